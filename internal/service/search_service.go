package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"anoa.com/perpustakaan/internal/model"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const booksIndex = "books"

// SearchService keeps the book catalog mirrored into Meilisearch. All methods
// tolerate a nil client so the service degrades to database search.
type SearchService interface {
	IndexBook(book *model.Book) error
	DeleteBook(id uuid.UUID) error
	// SearchBooks returns matching book ids restricted to the given library
	// set; an empty libraryIDs slice means unrestricted (admin).
	SearchBooks(query string, libraryIDs []uuid.UUID) ([]uuid.UUID, error)
	Enabled() bool
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"library_id", "deleted"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(booksIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update books filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index(booksIndex).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update books sortable attributes: %v", err)
	}
}

type meiliBookDoc struct {
	ID        string `json:"id"`
	LibraryID string `json:"library_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Publisher string `json:"publisher"`
	Summary   string `json:"summary"`
	Deleted   bool   `json:"deleted"`
	CreatedAt int64  `json:"created_at"`
}

func (s *searchService) cleanForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexBook(book *model.Book) error {
	if !s.Enabled() {
		return nil
	}

	summary := ""
	if book.SummaryEN != nil {
		summary = *book.SummaryEN
	}
	if book.SummaryID != nil {
		summary = summary + " " + *book.SummaryID
	}

	doc := meiliBookDoc{
		ID:        book.ID.String(),
		LibraryID: book.LibraryID.String(),
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		Publisher: book.Publisher,
		Summary:   s.cleanForIndex(summary),
		Deleted:   book.DeletedAt != nil,
		CreatedAt: book.CreatedAt.Unix(),
	}

	_, err := s.client.Index(booksIndex).AddDocuments([]meiliBookDoc{doc}, strPtr("id"))
	return err
}

func (s *searchService) DeleteBook(id uuid.UUID) error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.client.Index(booksIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) SearchBooks(query string, libraryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("search index is not configured")
	}

	req := &meilisearch.SearchRequest{Limit: 100}
	if len(libraryIDs) > 0 {
		quoted := make([]string, 0, len(libraryIDs))
		for _, id := range libraryIDs {
			quoted = append(quoted, fmt.Sprintf("%q", id.String()))
		}
		req.Filter = fmt.Sprintf("library_id IN [%s]", strings.Join(quoted, ", "))
	}

	resp, err := s.client.Index(booksIndex).Search(query, req)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so we only depend on the document shape, not on
	// the client's hit representation.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
