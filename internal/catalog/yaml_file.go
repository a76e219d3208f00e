package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type yamlCatalog struct {
	Products []yamlProduct `yaml:"products"`
}

type yamlProduct struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
	Stock       *int64 `yaml:"stock"`
}

// YAMLFile 本機種子檔
//
//	products:
//	  - code: p1
//	    title: Mug
//	    price: "10.00"
//	    stock: 5
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

func (y *YAMLFile) Name() string {
	return "yaml:" + y.path
}

func (y *YAMLFile) Fetch(ctx context.Context) ([]Item, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed file: %w", err)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) ([]Item, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog seed file: %w", err)
	}

	items := make([]Item, 0, len(doc.Products))
	for i, p := range doc.Products {
		if p.Code == "" || p.Title == "" {
			return nil, fmt.Errorf("catalog product #%d: code and title are required", i)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog product %s: invalid price %q", p.Code, p.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog product %s: negative price", p.Code)
		}
		if p.Stock != nil && *p.Stock < 0 {
			return nil, fmt.Errorf("catalog product %s: negative stock", p.Code)
		}
		items = append(items, Item{
			Code:         p.Code,
			Title:        p.Title,
			Price:        price,
			Description:  p.Description,
			Category:     p.Category,
			Image:        p.Image,
			InitialStock: p.Stock,
		})
	}
	return items, nil
}
