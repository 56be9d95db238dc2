package catalog

import (
	"math"
	"strconv"
	"strings"
)

// Article is a reusable priced line template.
type Article struct {
	ID      string  `json:"id" yaml:"id"`
	Title   string  `json:"title" yaml:"title"`
	Details string  `json:"details" yaml:"details"`
	Price   float64 `json:"price" yaml:"price"`
}

// SubCategory groups articles below a main category.
type SubCategory struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Articles []Article `json:"articles" yaml:"articles"`
}

// MainCategory is a root node of the catalog tree.
type MainCategory struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	SubCategories []SubCategory `json:"subCategories" yaml:"subCategories"`
}

// Catalog is the ordered list of main categories.
type Catalog []MainCategory

// Clone returns a deep copy that shares no slices with c.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return Catalog{}
	}
	out := make(Catalog, len(c))
	for i, main := range c {
		out[i] = main.clone()
	}
	return out
}

func (m MainCategory) clone() MainCategory {
	subs := make([]SubCategory, len(m.SubCategories))
	for i, sub := range m.SubCategories {
		subs[i] = sub.clone()
	}
	m.SubCategories = subs
	return m
}

func (s SubCategory) clone() SubCategory {
	articles := make([]Article, len(s.Articles))
	copy(articles, s.Articles)
	s.Articles = articles
	return s
}

// FindMain returns the main category with id.
func (c Catalog) FindMain(id string) (MainCategory, bool) {
	for _, main := range c {
		if main.ID == id {
			return main, true
		}
	}
	return MainCategory{}, false
}

// FindSub returns the subcategory with id together with its parent id.
func (c Catalog) FindSub(id string) (SubCategory, string, bool) {
	for _, main := range c {
		for _, sub := range main.SubCategories {
			if sub.ID == id {
				return sub, main.ID, true
			}
		}
	}
	return SubCategory{}, "", false
}

// FindArticle looks an article up anywhere in the tree.
func (c Catalog) FindArticle(id string) (Article, bool) {
	for _, main := range c {
		for _, sub := range main.SubCategories {
			for _, a := range sub.Articles {
				if a.ID == id {
					return a, true
				}
			}
		}
	}
	return Article{}, false
}

// ArticleField names an editable article attribute.
type ArticleField string

const (
	FieldTitle   ArticleField = "title"
	FieldDetails ArticleField = "details"
	FieldPrice   ArticleField = "price"
)

// Valid reports whether f is a known field.
func (f ArticleField) Valid() bool {
	switch f {
	case FieldTitle, FieldDetails, FieldPrice:
		return true
	}
	return false
}

// ParseAmount converts user input to a currency amount. A comma is accepted as
// decimal separator. Unparseable or negative input yields 0.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
