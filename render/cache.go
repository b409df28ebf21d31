package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const cacheSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	document TEXT NOT NULL,
	id       TEXT NOT NULL,
	png      BLOB NOT NULL,
	PRIMARY KEY (document, id)
)`

// Cache remembers snapshots of capture documents so identical requests are
// not rendered again. It wraps another service.
type Cache struct {
	inner Service
	log   *zap.Logger

	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenCache opens (creating if necessary) snapshot database at path.
func OpenCache(path string, inner Service, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("open render cache %s: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, cacheSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize render cache: %w", err)
	}
	return &Cache{inner: inner, log: log.Named("render-cache"), conn: conn}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Submit returns cached snapshots of the request document or forwards it to
// wrapped service and stores its result.
func (c *Cache) Submit(ctx context.Context, req Request) *Future {
	doc, err := Document(req)
	if err != nil {
		f := NewFuture()
		f.Resolve(nil, err)
		return f
	}
	key := DocumentHash(doc)

	res, err := c.lookup(key, len(req.Boxes))
	if err != nil {
		c.log.Warn("Unable to read render cache", zap.Error(err))
	}
	if res != nil {
		c.log.Debug("Render cache hit", zap.String("document", key))
		f := NewFuture()
		f.Resolve(res, nil)
		return f
	}

	f := NewFuture()
	inner := c.inner.Submit(ctx, req)
	go func() {
		select {
		case <-inner.Done():
		case <-ctx.Done():
			f.Resolve(nil, ctx.Err())
			return
		}
		res, err := inner.res, inner.err
		if err == nil {
			if serr := c.store(key, res); serr != nil {
				c.log.Warn("Unable to update render cache", zap.Error(serr))
			}
		}
		f.Resolve(res, err)
	}()
	return f
}

// lookup returns nil when document is not cached completely.
func (c *Cache) lookup(key string, boxes int) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, nil
	}
	res := &Result{Snapshots: make(map[string]image.Image)}
	err := sqlitex.Execute(c.conn, `SELECT id, png FROM snapshots WHERE document = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data, err := io.ReadAll(stmt.ColumnReader(1))
				if err != nil {
					return err
				}
				img, err := png.Decode(bytes.NewReader(data))
				if err != nil {
					return err
				}
				res.Snapshots[stmt.ColumnText(0)] = img
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	if boxes == 0 || len(res.Snapshots) != boxes {
		return nil, nil
	}
	return res, nil
}

func (c *Cache) store(key string, res *Result) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	defer sqlitex.Save(c.conn)(&err)

	for id, img := range res.Snapshots {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode snapshot %s: %w", id, err)
		}
		err := sqlitex.Execute(c.conn, `INSERT OR REPLACE INTO snapshots (document, id, png) VALUES (?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{key, id, buf.Bytes()}})
		if err != nil {
			return err
		}
	}
	return nil
}
