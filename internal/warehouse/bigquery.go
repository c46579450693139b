package warehouse

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryConfig configures the BigQuery executor.
type BigQueryConfig struct {
	Project string

	// CredentialsFile is a service-account JSON file. Empty means
	// application default credentials.
	CredentialsFile string
}

// BigQuery executes queries with the BigQuery client.
type BigQuery struct {
	client *bigquery.Client
}

// NewBigQuery creates a client for cfg.Project. Extra client options are
// appended after the credentials option.
func NewBigQuery(ctx context.Context, cfg BigQueryConfig, opts ...option.ClientOption) (*BigQuery, error) {
	if cfg.Project == "" {
		return nil, errors.WithHint(errors.New("bigquery: missing project"), "set warehouse.project")
	}
	var all []option.ClientOption
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	client, err := bigquery.NewClient(ctx, cfg.Project, all...)
	if err != nil {
		return nil, errors.Wrap(err, "bigquery client")
	}
	return &BigQuery{client: client}, nil
}

// Close releases the client.
func (b *BigQuery) Close() error {
	return b.client.Close()
}

// Execute runs query as a standard SQL job and reads every row.
func (b *BigQuery) Execute(ctx context.Context, query string) (*ResultSet, error) {
	it, err := b.client.Query(query).Read(ctx)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Rows: [][]any{}}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		rs.Rows = append(rs.Rows, values)
	}

	// The schema is known once the first page has been fetched.
	for _, f := range it.Schema {
		rs.Columns = append(rs.Columns, f.Name)
	}
	return rs, nil
}
