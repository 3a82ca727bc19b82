package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Algolizen-Inc/LinkRanker/pkg/errors"
	"github.com/Algolizen-Inc/LinkRanker/pkg/postgres"
	"github.com/Algolizen-Inc/LinkRanker/pkg/resilience"
)

// PostgresSource loads index snapshots from the indexing collaborator's
// Postgres tables: postings (term, doc_id, frequency), documents
// (id, url, title, content, token_count), and document_links (from_doc,
// to_doc). Loads run behind a circuit breaker with retry, since a snapshot
// reload touches three full tables.
type PostgresSource struct {
	client  *postgres.Client
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

func NewPostgresSource(client *postgres.Client) *PostgresSource {
	return &PostgresSource{
		client:  client,
		breaker: resilience.NewCircuitBreaker("index-source", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "index-source"),
	}
}

// Load reads the full inverted index, document length table, and link
// relation in one snapshot. The three reads run inside a single read-only
// transaction so a concurrent index write cannot leave the snapshot
// straddling two index generations.
func (s *PostgresSource) Load(ctx context.Context) (*Snapshot, error) {
	var snapshot *Snapshot
	err := s.breaker.Execute(func() error {
		return resilience.Retry(ctx, "load-index-snapshot", resilience.RetryConfig{}, func() error {
			loaded, err := s.loadOnce(ctx)
			if err != nil {
				return err
			}
			snapshot = loaded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading index snapshot: %w", err)
	}
	s.logger.Info("index snapshot loaded",
		"docs", snapshot.TotalDocs(),
		"links", len(snapshot.Links()),
		"avg_doc_length", snapshot.AvgDocLength(),
	)
	return snapshot, nil
}

func (s *PostgresSource) loadOnce(ctx context.Context) (*Snapshot, error) {
	var snapshot *Snapshot
	txOpts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := s.client.InTx(ctx, txOpts, func(tx *sql.Tx) error {
		inverted, err := s.loadPostings(ctx, tx)
		if err != nil {
			return err
		}
		docLengths, err := s.loadDocLengths(ctx, tx)
		if err != nil {
			return err
		}
		links, err := s.loadLinks(ctx, tx)
		if err != nil {
			return err
		}
		snapshot = NewSnapshot(inverted, docLengths, links)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *PostgresSource) loadPostings(ctx context.Context, tx *sql.Tx) (InvertedIndex, error) {
	inverted := make(InvertedIndex)
	rows, err := tx.QueryContext(ctx,
		`SELECT term, doc_id, frequency FROM postings`)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var term string
		var docID int64
		var frequency int
		if err := rows.Scan(&term, &docID, &frequency); err != nil {
			return nil, fmt.Errorf("scanning posting row: %w", err)
		}
		if _, exists := inverted[term]; !exists {
			inverted[term] = make(map[int64]TermStats)
		}
		inverted[term][docID] = TermStats{Frequency: frequency}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	return inverted, nil
}

func (s *PostgresSource) loadDocLengths(ctx context.Context, tx *sql.Tx) (DocLengths, error) {
	docLengths := make(DocLengths)
	rows, err := tx.QueryContext(ctx,
		`SELECT id, token_count FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying document lengths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docID int64
		var tokenCount int
		if err := rows.Scan(&docID, &tokenCount); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docLengths[docID] = tokenCount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docLengths, nil
}

func (s *PostgresSource) loadLinks(ctx context.Context, tx *sql.Tx) ([]Link, error) {
	links := make([]Link, 0)
	rows, err := tx.QueryContext(ctx,
		`SELECT from_doc, to_doc FROM document_links`)
	if err != nil {
		return nil, fmt.Errorf("querying document links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.From, &link.To); err != nil {
			return nil, fmt.Errorf("scanning link row: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document links: %w", err)
	}
	return links, nil
}

// GetDocumentByID fetches a stored document for result display.
func (s *PostgresSource) GetDocumentByID(ctx context.Context, id int64) (Document, error) {
	var doc Document
	row := s.client.DB.QueryRowContext(ctx,
		`SELECT id, url, title, content FROM documents WHERE id = $1`, id)
	if err := row.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Content); err != nil {
		if err == sql.ErrNoRows {
			return Document{}, errors.Newf(errors.ErrDocumentNotFound, 404, "document %d", id)
		}
		return Document{}, fmt.Errorf("querying document %d: %w", id, err)
	}
	return doc, nil
}
