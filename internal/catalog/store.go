package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/verandameister/quotedesk/internal/shared"
)

// Placeholder content for articles created through AddArticle.
const (
	NewArticleTitle   = "Premium Aluminium Terrassenüberdachung"
	NewArticleDetails = "- Dacheindeckung: ...\n- Pulverbeschichtung: ...\n- Afmetingen: ..."
)

// Selection is the active main and sub category. Empty ids mean no selection.
type Selection struct {
	MainID string `json:"activeMainId"`
	SubID  string `json:"activeSubId"`
}

// Store holds a catalog tree plus the current selection. Every mutation
// builds a new tree and swaps it in, so a Catalog value obtained earlier is
// never modified afterwards. Store is not safe for concurrent use.
type Store struct {
	tree      Catalog
	selection Selection
	newID     func() string
}

// NewStore returns a store over a copy of c with the first main category and
// its first subcategory selected.
func NewStore(c Catalog) *Store {
	s := &Store{newID: uuid.NewString}
	s.Replace(c)
	return s
}

// Catalog returns a deep copy of the tree.
func (s *Store) Catalog() Catalog {
	return s.tree.Clone()
}

// Selection returns the active ids.
func (s *Store) Selection() Selection {
	return s.selection
}

// Replace swaps in a copy of c. The selection is kept when it still resolves
// and reset to the first entries otherwise.
func (s *Store) Replace(c Catalog) {
	s.tree = c.Clone()
	main, ok := s.tree.FindMain(s.selection.MainID)
	if !ok {
		s.selectFirst()
		return
	}
	if s.selection.SubID != "" && !hasSub(main, s.selection.SubID) {
		s.selection.SubID = firstSubID(main)
	}
}

// AddMain appends a main category and selects it. The name is trimmed and
// upper-cased.
func (s *Store) AddMain(name string) (MainCategory, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return MainCategory{}, &shared.ValidationError{Field: "name", Message: "category name is required"}
	}
	main := MainCategory{ID: s.newID(), Name: name, SubCategories: []SubCategory{}}

	next := append(s.tree.Clone(), main)
	s.tree = next
	s.selection = Selection{MainID: main.ID}
	return main, nil
}

// DeleteMain removes a main category with its whole subtree. When the active
// category is removed the first remaining one becomes active.
func (s *Store) DeleteMain(id string) {
	next := make(Catalog, 0, len(s.tree))
	for _, main := range s.tree {
		if main.ID == id {
			continue
		}
		next = append(next, main.clone())
	}
	if len(next) == len(s.tree) {
		return
	}
	s.tree = next
	if s.selection.MainID == id {
		s.selectFirst()
	}
}

// AddSub appends a subcategory under parentID and selects it. An unknown
// parent leaves the tree untouched and returns the zero SubCategory.
func (s *Store) AddSub(parentID, name string) (SubCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SubCategory{}, &shared.ValidationError{Field: "name", Message: "subcategory name is required"}
	}
	if _, ok := s.tree.FindMain(parentID); !ok {
		return SubCategory{}, nil
	}
	sub := SubCategory{ID: s.newID(), Name: name, Articles: []Article{}}

	s.tree = s.mapMains(func(m MainCategory) MainCategory {
		if m.ID == parentID {
			m.SubCategories = append(m.SubCategories, sub)
		}
		return m
	})
	s.selection = Selection{MainID: parentID, SubID: sub.ID}
	return sub, nil
}

// DeleteSub removes subcategory id from parentID.
func (s *Store) DeleteSub(parentID, id string) {
	s.tree = s.mapMains(func(m MainCategory) MainCategory {
		if m.ID != parentID {
			return m
		}
		subs := make([]SubCategory, 0, len(m.SubCategories))
		for _, sub := range m.SubCategories {
			if sub.ID != id {
				subs = append(subs, sub)
			}
		}
		m.SubCategories = subs
		return m
	})
	if s.selection.SubID == id {
		s.selection.SubID = ""
	}
}

// SelectMain activates a main category and its first subcategory.
func (s *Store) SelectMain(id string) {
	main, ok := s.tree.FindMain(id)
	if !ok {
		return
	}
	s.selection = Selection{MainID: main.ID, SubID: firstSubID(main)}
}

// SelectSub activates a subcategory together with its parent.
func (s *Store) SelectSub(id string) {
	_, parentID, ok := s.tree.FindSub(id)
	if !ok {
		return
	}
	s.selection = Selection{MainID: parentID, SubID: id}
}

// AddArticle appends a placeholder article to the active subcategory. It
// reports false when no subcategory is active.
func (s *Store) AddArticle() (Article, bool) {
	if s.selection.SubID == "" {
		return Article{}, false
	}
	article := Article{ID: s.newID(), Title: NewArticleTitle, Details: NewArticleDetails}
	s.tree = s.mapSubs(func(sub SubCategory) SubCategory {
		if sub.ID == s.selection.SubID {
			sub.Articles = append(sub.Articles, article)
		}
		return sub
	})
	return article, true
}

// UpdateArticle replaces one field of an article in the active subcategory.
// Price input that does not parse is stored as 0.
func (s *Store) UpdateArticle(id string, field ArticleField, value string) error {
	if !field.Valid() {
		return &shared.ValidationError{Field: "field", Message: "unknown article field " + string(field)}
	}
	s.tree = s.mapSubs(func(sub SubCategory) SubCategory {
		if sub.ID != s.selection.SubID {
			return sub
		}
		for i := range sub.Articles {
			if sub.Articles[i].ID != id {
				continue
			}
			switch field {
			case FieldTitle:
				sub.Articles[i].Title = value
			case FieldDetails:
				sub.Articles[i].Details = value
			case FieldPrice:
				sub.Articles[i].Price = ParseAmount(value)
			}
		}
		return sub
	})
	return nil
}

// DeleteArticle removes an article from the active subcategory.
func (s *Store) DeleteArticle(id string) {
	s.tree = s.mapSubs(func(sub SubCategory) SubCategory {
		if sub.ID != s.selection.SubID {
			return sub
		}
		articles := make([]Article, 0, len(sub.Articles))
		for _, a := range sub.Articles {
			if a.ID != id {
				articles = append(articles, a)
			}
		}
		sub.Articles = articles
		return sub
	})
}

func (s *Store) mapMains(fn func(MainCategory) MainCategory) Catalog {
	next := make(Catalog, len(s.tree))
	for i, main := range s.tree {
		next[i] = fn(main.clone())
	}
	return next
}

func (s *Store) mapSubs(fn func(SubCategory) SubCategory) Catalog {
	return s.mapMains(func(m MainCategory) MainCategory {
		for i, sub := range m.SubCategories {
			m.SubCategories[i] = fn(sub)
		}
		return m
	})
}

func (s *Store) selectFirst() {
	if len(s.tree) == 0 {
		s.selection = Selection{}
		return
	}
	s.selection = Selection{MainID: s.tree[0].ID, SubID: firstSubID(s.tree[0])}
}

func firstSubID(m MainCategory) string {
	if len(m.SubCategories) == 0 {
		return ""
	}
	return m.SubCategories[0].ID
}

func hasSub(m MainCategory, id string) bool {
	for _, sub := range m.SubCategories {
		if sub.ID == id {
			return true
		}
	}
	return false
}
