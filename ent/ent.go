package ent

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plant struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location" db:"location"`
	Capacity int64  `json:"capacity" db:"capacity"`
}

type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

type Material struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Unit        string          `json:"unit" db:"unit"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
}

type Order struct {
	ID           int64     `json:"id" db:"id"`
	OrderDate    time.Time `json:"order_date" db:"order_date"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	Status       string    `json:"status" db:"status"`
}

// PlantProduct is the quantity of a product a plant makes.
type PlantProduct struct {
	ID        int64           `json:"id" db:"id"`
	PlantID   int64           `json:"plant_id" db:"plant_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
}

// ProductMaterial is one line of a product's bill of materials.
type ProductMaterial struct {
	ID         int64           `json:"id" db:"id"`
	ProductID  int64           `json:"product_id" db:"product_id"`
	MaterialID int64           `json:"material_id" db:"material_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`

	MaterialName string `json:"material_name,omitempty" db:"material_name"`
	Unit         string `json:"unit,omitempty" db:"unit"`
}

type PlantMaterial struct {
	ID         int64           `json:"id" db:"id"`
	PlantID    int64           `json:"plant_id" db:"plant_id"`
	MaterialID int64           `json:"material_id" db:"material_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`

	MaterialName string `json:"material_name,omitempty" db:"material_name"`
}

type OrderProduct struct {
	ID        int64 `json:"id" db:"id"`
	OrderID   int64 `json:"order_id" db:"order_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int64 `json:"quantity" db:"quantity"`
}

type StorageProduct struct {
	ID        int64 `json:"id" db:"id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int64 `json:"quantity" db:"quantity"`
}

type StorageMaterial struct {
	ID         int64 `json:"id" db:"id"`
	MaterialID int64 `json:"material_id" db:"material_id"`
	Quantity   int64 `json:"quantity" db:"quantity"`
}
