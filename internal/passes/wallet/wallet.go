// Package wallet implements the pass store ports on top of the Google Wallet
// REST API, using generic classes and objects.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	"google.golang.org/api/walletobjects/v1"

	"raseed/internal/core"
	ports "raseed/internal/passes"
)

// Ensure interface conformance
var _ ports.Store = (*Client)(nil)

const defaultPageSize = 100

// Credentials selects the service account key used to authenticate. JSON
// wins over File.
type Credentials struct {
	JSON string
	File string
}

// Load returns the raw service account key.
func (c Credentials) Load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		b, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Client is a pass store backed by Google Wallet generic objects.
type Client struct {
	svc      *walletobjects.Service
	pageSize int64
	logger   *slog.Logger
}

// New creates a Wallet client authenticated with a service account key.
func New(ctx context.Context, creds Credentials, logger *slog.Logger) (*Client, error) {
	key, err := creds.Load()
	if err != nil {
		return nil, err
	}
	svc, err := walletobjects.NewService(ctx,
		goption.WithCredentialsJSON(key),
		goption.WithScopes(walletobjects.WalletObjectIssuerScope))
	if err != nil {
		return nil, fmt.Errorf("create wallet service: %w", err)
	}
	return NewWithService(svc, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *walletobjects.Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{svc: svc, pageSize: defaultPageSize, logger: logger.With("component", "wallet")}
}

// FetchPasses lists all generic objects of a class, following page tokens.
func (c *Client) FetchPasses(ctx context.Context, classID string) ([]core.Pass, error) {
	if c.svc == nil {
		return nil, errors.New("wallet service not initialized")
	}
	var out []core.Pass
	token := ""
	pages := 0
	for {
		call := c.svc.Genericobject.List().ClassId(classID).MaxResults(c.pageSize).Context(ctx)
		if token != "" {
			call = call.Token(token)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list objects for class %s: %w", classID, err)
		}
		pages++
		for _, o := range resp.Resources {
			out = append(out, ToPass(o))
		}
		if resp.Pagination == nil || resp.Pagination.NextPageToken == "" {
			break
		}
		token = resp.Pagination.NextPageToken
	}
	c.logger.DebugContext(ctx, "Fetched passes", "class_id", classID, "count", len(out), "pages", pages)
	return out, nil
}

// UpsertPass inserts the object, or updates it when an object with the same id exists.
func (c *Client) UpsertPass(ctx context.Context, p core.Pass) (string, error) {
	if c.svc == nil {
		return "", errors.New("wallet service not initialized")
	}
	if p.ID == "" || p.ClassID == "" {
		return "", errors.New("pass id and class id are required")
	}
	obj := ToObject(p)

	_, err := c.svc.Genericobject.Get(p.ID).Context(ctx).Do()
	switch {
	case isNotFound(err):
		created, err := c.svc.Genericobject.Insert(obj).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("insert object %s: %w", p.ID, err)
		}
		c.logger.InfoContext(ctx, "Inserted pass", "pass_id", created.Id, "class_id", p.ClassID)
		return created.Id, nil
	case err != nil:
		return "", fmt.Errorf("get object %s: %w", p.ID, err)
	}

	updated, err := c.svc.Genericobject.Update(p.ID, obj).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update object %s: %w", p.ID, err)
	}
	c.logger.InfoContext(ctx, "Updated pass", "pass_id", updated.Id, "class_id", p.ClassID)
	return updated.Id, nil
}

// EnsureClass creates an empty generic class when it does not exist yet.
func (c *Client) EnsureClass(ctx context.Context, classID string) error {
	if c.svc == nil {
		return errors.New("wallet service not initialized")
	}
	_, err := c.svc.Genericclass.Get(classID).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("get class %s: %w", classID, err)
	}
	if _, err := c.svc.Genericclass.Insert(&walletobjects.GenericClass{Id: classID}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert class %s: %w", classID, err)
	}
	c.logger.InfoContext(ctx, "Created pass class", "class_id", classID)
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
