package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mrp/ent"
	"mrp/store"
)

// Summary counts the rows inserted per table.
type Summary map[string]int

type loader struct {
	s       *store.Session
	orders  map[string]int64
	summary Summary
}

// Load inserts every CSV of fsys into the store in a single transaction.
// Files are optional, a missing one is skipped. Each file starts with a
// header row. Rows that reference plants, products or materials do so by
// name, so the referenced rows must exist in the store or an earlier file.
func Load(ctx context.Context, st *store.Store, fsys fs.FS) (Summary, error) {
	l := &loader{
		orders:  map[string]int64{},
		summary: Summary{},
	}

	steps := []struct {
		file   string
		fields int
		load   func(context.Context, []string) error
	}{
		{"plants.csv", 3, l.plant},
		{"materials.csv", 4, l.material},
		{"products.csv", 4, l.product},
		{"product_materials.csv", 3, l.productMaterial},
		{"plant_products.csv", 3, l.plantProduct},
		{"plant_materials.csv", 3, l.plantMaterial},
		{"storage_products.csv", 2, l.storageProduct},
		{"storage_materials.csv", 2, l.storageMaterial},
		{"orders.csv", 4, l.order},
		{"order_products.csv", 3, l.orderProduct},
	}

	err := st.Tx(ctx, func(s *store.Session) error {
		l.s = s

		for _, step := range steps {
			rows, err := readCSV(fsys, step.file, step.fields)
			if err != nil {
				return err
			}

			for i, row := range rows {
				err = step.load(ctx, row)
				if err != nil {
					return fmt.Errorf("%s line %d: %w", step.file, i+2, err)
				}
			}

			if len(rows) > 0 {
				logrus.WithFields(logrus.Fields{
					"file": step.file,
					"rows": len(rows),
				}).Info("loaded")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return l.summary, nil
}

// readCSV returns the data rows of name with surrounding spaces trimmed.
func readCSV(fsys fs.FS, name string, fields int) ([][]string, error) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	defer f.Close()

	r := csv.NewReader(f)

	r.FieldsPerRecord = fields
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := records[1:]
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}

	return rows, nil
}

func (l *loader) plant(ctx context.Context, row []string) error {
	capacity, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return fmt.Errorf("parse capacity: %w", err)
	}

	_, err = l.s.CreatePlant(ctx, ent.Plant{Name: row[0], Location: row[1], Capacity: capacity})
	if err != nil {
		return err
	}

	l.summary["plants"]++
	return nil
}

func (l *loader) material(ctx context.Context, row []string) error {
	cost, err := decimal.NewFromString(row[3])
	if err != nil {
		return fmt.Errorf("parse cost: %w", err)
	}

	_, err = l.s.CreateMaterial(ctx, ent.Material{
		Name:        row[0],
		Description: row[1],
		Unit:        row[2],
		Cost:        cost.Round(2),
	})
	if err != nil {
		return err
	}

	l.summary["materials"]++
	return nil
}

func (l *loader) product(ctx context.Context, row []string) error {
	price, err := decimal.NewFromString(row[3])
	if err != nil {
		return fmt.Errorf("parse price: %w", err)
	}

	_, err = l.s.CreateProduct(ctx, ent.Product{
		Name:        row[0],
		Description: row[1],
		Category:    row[2],
		Price:       price.Round(2),
	})
	if err != nil {
		return err
	}

	l.summary["products"]++
	return nil
}

func (l *loader) productMaterial(ctx context.Context, row []string) error {
	p, err := l.productByName(ctx, row[0])
	if err != nil {
		return err
	}
	m, err := l.materialByName(ctx, row[1])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(row[2])
	if err != nil {
		return err
	}

	_, err = l.s.AddProductMaterial(ctx, ent.ProductMaterial{ProductID: p.ID, MaterialID: m.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["product_materials"]++
	return nil
}

func (l *loader) plantProduct(ctx context.Context, row []string) error {
	pl, err := l.plantByName(ctx, row[0])
	if err != nil {
		return err
	}
	p, err := l.productByName(ctx, row[1])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(row[2])
	if err != nil {
		return err
	}

	_, err = l.s.AddPlantProduct(ctx, ent.PlantProduct{PlantID: pl.ID, ProductID: p.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["plant_products"]++
	return nil
}

func (l *loader) plantMaterial(ctx context.Context, row []string) error {
	pl, err := l.plantByName(ctx, row[0])
	if err != nil {
		return err
	}
	m, err := l.materialByName(ctx, row[1])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(row[2])
	if err != nil {
		return err
	}

	_, err = l.s.AddPlantMaterial(ctx, ent.PlantMaterial{PlantID: pl.ID, MaterialID: m.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["plant_materials"]++
	return nil
}

func (l *loader) storageProduct(ctx context.Context, row []string) error {
	p, err := l.productByName(ctx, row[0])
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse quantity: %w", err)
	}

	_, err = l.s.AddStorageProduct(ctx, ent.StorageProduct{ProductID: p.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["storage_products"]++
	return nil
}

func (l *loader) storageMaterial(ctx context.Context, row []string) error {
	m, err := l.materialByName(ctx, row[0])
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse quantity: %w", err)
	}

	_, err = l.s.AddStorageMaterial(ctx, ent.StorageMaterial{MaterialID: m.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["storage_materials"]++
	return nil
}

var orderDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (l *loader) order(ctx context.Context, row []string) error {
	if _, ok := l.orders[row[0]]; ok {
		return fmt.Errorf("duplicate order reference %q", row[0])
	}

	var (
		date time.Time
		err  error
	)
	for _, layout := range orderDateLayouts {
		date, err = time.Parse(layout, row[1])
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("parse order date %q", row[1])
	}

	o, err := l.s.CreateOrder(ctx, ent.Order{OrderDate: date.UTC(), CustomerName: row[2], Status: row[3]})
	if err != nil {
		return err
	}

	l.orders[row[0]] = o.ID
	l.summary["orders"]++
	return nil
}

func (l *loader) orderProduct(ctx context.Context, row []string) error {
	orderID, ok := l.orders[row[0]]
	if !ok {
		return fmt.Errorf("unknown order reference %q", row[0])
	}
	p, err := l.productByName(ctx, row[1])
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return fmt.Errorf("parse quantity: %w", err)
	}

	_, err = l.s.AddOrderProduct(ctx, ent.OrderProduct{OrderID: orderID, ProductID: p.ID, Quantity: qty})
	if err != nil {
		return err
	}

	l.summary["order_products"]++
	return nil
}

func parseQuantity(s string) (decimal.Decimal, error) {
	qty, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse quantity: %w", err)
	}

	return qty.Round(2), nil
}

func (l *loader) plantByName(ctx context.Context, name string) (ent.Plant, error) {
	p, err := l.s.PlantByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return p, fmt.Errorf("unknown plant %q", name)
	}
	return p, err
}

func (l *loader) productByName(ctx context.Context, name string) (ent.Product, error) {
	p, err := l.s.ProductByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return p, fmt.Errorf("unknown product %q", name)
	}
	return p, err
}

func (l *loader) materialByName(ctx context.Context, name string) (ent.Material, error) {
	m, err := l.s.MaterialByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return m, fmt.Errorf("unknown material %q", name)
	}
	return m, err
}
