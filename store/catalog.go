package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mrp/ent"
)

func (s *Session) insertID(ctx context.Context, table, query string, args ...interface{}) (int64, error) {
	var id int64

	err := s.get(ctx, &id, query+` returning id`, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}

	return id, nil
}

func (s *Session) CreateProduct(ctx context.Context, p ent.Product) (ent.Product, error) {
	id, err := s.insertID(ctx, "products", `
		insert into products(name, description, category, price)
		values (?, ?, ?, ?)
	`, p.Name, p.Description, p.Category, p.Price)
	if err != nil {
		return ent.Product{}, err
	}

	p.ID = id

	return p, nil
}

func (s *Session) ProductByName(ctx context.Context, name string) (ent.Product, error) {
	var p ent.Product

	err := s.get(ctx, &p, `
		select id, name, coalesce(description, '') as description,
		       coalesce(category, '') as category, price
		from products where name = ?
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("select product %q: %w", name, err)
	}

	return p, nil
}

func (s *Session) CreateMaterial(ctx context.Context, m ent.Material) (ent.Material, error) {
	id, err := s.insertID(ctx, "materials", `
		insert into materials(name, description, unit, cost)
		values (?, ?, ?, ?)
	`, m.Name, m.Description, m.Unit, m.Cost)
	if err != nil {
		return ent.Material{}, err
	}

	m.ID = id

	return m, nil
}

func (s *Session) MaterialByName(ctx context.Context, name string) (ent.Material, error) {
	var m ent.Material

	err := s.get(ctx, &m, `
		select id, name, coalesce(description, '') as description,
		       coalesce(unit, '') as unit, cost
		from materials where name = ?
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	if err != nil {
		return m, fmt.Errorf("select material %q: %w", name, err)
	}

	return m, nil
}

func (s *Session) CreateOrder(ctx context.Context, o ent.Order) (ent.Order, error) {
	id, err := s.insertID(ctx, "orders", `
		insert into orders(order_date, customer_name, status)
		values (?, ?, ?)
	`, o.OrderDate, o.CustomerName, o.Status)
	if err != nil {
		return ent.Order{}, err
	}

	o.ID = id

	return o, nil
}

func (s *Session) AddPlantProduct(ctx context.Context, pp ent.PlantProduct) (ent.PlantProduct, error) {
	id, err := s.insertID(ctx, "plant_products", `
		insert into plant_products(plant_id, product_id, quantity)
		values (?, ?, ?)
	`, pp.PlantID, pp.ProductID, pp.Quantity)
	pp.ID = id
	return pp, err
}

func (s *Session) AddProductMaterial(ctx context.Context, pm ent.ProductMaterial) (ent.ProductMaterial, error) {
	id, err := s.insertID(ctx, "product_materials", `
		insert into product_materials(product_id, material_id, quantity)
		values (?, ?, ?)
	`, pm.ProductID, pm.MaterialID, pm.Quantity)
	pm.ID = id
	return pm, err
}

func (s *Session) AddPlantMaterial(ctx context.Context, pm ent.PlantMaterial) (ent.PlantMaterial, error) {
	id, err := s.insertID(ctx, "plant_materials", `
		insert into plant_materials(plant_id, material_id, quantity)
		values (?, ?, ?)
	`, pm.PlantID, pm.MaterialID, pm.Quantity)
	pm.ID = id
	return pm, err
}

func (s *Session) AddOrderProduct(ctx context.Context, op ent.OrderProduct) (ent.OrderProduct, error) {
	id, err := s.insertID(ctx, "order_products", `
		insert into order_products(order_id, product_id, quantity)
		values (?, ?, ?)
	`, op.OrderID, op.ProductID, op.Quantity)
	op.ID = id
	return op, err
}

func (s *Session) AddStorageProduct(ctx context.Context, sp ent.StorageProduct) (ent.StorageProduct, error) {
	id, err := s.insertID(ctx, "storage_products", `
		insert into storage_products(product_id, quantity)
		values (?, ?)
	`, sp.ProductID, sp.Quantity)
	sp.ID = id
	return sp, err
}

func (s *Session) AddStorageMaterial(ctx context.Context, sm ent.StorageMaterial) (ent.StorageMaterial, error) {
	id, err := s.insertID(ctx, "storage_materials", `
		insert into storage_materials(material_id, quantity)
		values (?, ?)
	`, sm.MaterialID, sm.Quantity)
	sm.ID = id
	return sm, err
}

// ProductMaterials returns the bill of materials of a product.
func (s *Session) ProductMaterials(ctx context.Context, productID int64) ([]ent.ProductMaterial, error) {
	pms := []ent.ProductMaterial{}

	err := s.selectAll(ctx, &pms, `
		select pm.id as id, product_id, material_id, quantity,
		       m.name as material_name, coalesce(m.unit, '') as unit
		from product_materials pm
		    left join materials m on pm.material_id = m.id
		where product_id = ?
		order by pm.id asc
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("select product %d materials: %w", productID, err)
	}

	return pms, nil
}

// PlantMaterials returns the materials held at a plant.
func (s *Session) PlantMaterials(ctx context.Context, plantID int64) ([]ent.PlantMaterial, error) {
	pms := []ent.PlantMaterial{}

	err := s.selectAll(ctx, &pms, `
		select pm.id as id, plant_id, material_id, quantity, m.name as material_name
		from plant_materials pm
		    left join materials m on pm.material_id = m.id
		where plant_id = ?
		order by pm.id asc
	`, plantID)
	if err != nil {
		return nil, fmt.Errorf("select plant %d materials: %w", plantID, err)
	}

	return pms, nil
}
