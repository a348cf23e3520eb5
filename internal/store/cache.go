// Package store persists generated height grids in a sqlite database so
// revisited terrain does not have to be regenerated.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/terrainstream/internal/heightfield"
	"github.com/Faultbox/terrainstream/internal/logger"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

// ErrNotFound is returned by Get for grids that were never stored.
var ErrNotFound = errors.New("height grid not found")

// Key identifies one stored grid.
type Key struct {
	Fingerprint string
	X, Y        int
}

// Fingerprint hashes everything that changes the heights of a chunk, so
// grids of different terrains never collide in one database.
func Fingerprint(height heightfield.Settings, mesh terrain.MeshSettings) string {
	doc := struct {
		Height    heightfield.Settings `json:"height"`
		ChunkSize int                  `json:"chunk_size"`
		MeshScale float32              `json:"mesh_scale"`
	}{height, mesh.ChunkSize, mesh.MeshScale}
	b, _ := json.Marshal(doc)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:12])
}

// Cache is a sqlite table of zstd-compressed height grids. It is safe
// for concurrent use.
type Cache struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	log *zap.Logger

	once sync.Once
}

// Open creates or opens the cache database at path.
func Open(path string, log *zap.Logger) (*Cache, error) {
	if path == "" {
		return nil, fmt.Errorf("empty cache path")
	}
	if log == nil {
		log = logger.Named("store")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}

	log.Info("height cache opened", zap.String("path", path))
	return &Cache{db: db, enc: enc, dec: dec, log: log}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS height_grids (
		fingerprint TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		min_height REAL NOT NULL,
		max_height REAL NOT NULL,
		data BLOB NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (fingerprint, x, y)
	);`)
	return err
}

// Close releases the database and codecs.
func (c *Cache) Close() error {
	var err error
	c.once.Do(func() {
		c.dec.Close()
		_ = c.enc.Close()
		err = c.db.Close()
	})
	return err
}

// Put stores g under key, replacing any previous grid.
func (c *Cache) Put(ctx context.Context, key Key, g *heightfield.Grid) error {
	blob := c.enc.EncodeAll(encodeValues(g.Values), nil)
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO height_grids(fingerprint,x,y,width,height,min_height,max_height,data,created_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		key.Fingerprint, key.X, key.Y, g.Width, g.Height, g.Min, g.Max, blob,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store grid %s (%d,%d): %w", key.Fingerprint, key.X, key.Y, err)
	}
	return nil
}

// Get loads the grid stored under key.
func (c *Cache) Get(ctx context.Context, key Key) (*heightfield.Grid, error) {
	var (
		width, height int
		lo, hi        float64
		blob          []byte
	)
	row := c.db.QueryRowContext(ctx,
		`SELECT width,height,min_height,max_height,data FROM height_grids WHERE fingerprint=? AND x=? AND y=?`,
		key.Fingerprint, key.X, key.Y)
	if err := row.Scan(&width, &height, &lo, &hi, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load grid %s (%d,%d): %w", key.Fingerprint, key.X, key.Y, err)
	}

	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress grid %s (%d,%d): %w", key.Fingerprint, key.X, key.Y, err)
	}
	values, err := decodeValues(raw, width*height)
	if err != nil {
		return nil, fmt.Errorf("decode grid %s (%d,%d): %w", key.Fingerprint, key.X, key.Y, err)
	}
	return &heightfield.Grid{
		Width:  width,
		Height: height,
		Values: values,
		Min:    float32(lo),
		Max:    float32(hi),
	}, nil
}

// Count returns how many grids are stored for a fingerprint.
func (c *Cache) Count(ctx context.Context, fingerprint string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM height_grids WHERE fingerprint=?`, fingerprint).Scan(&n)
	return n, err
}

// Prune deletes every grid not belonging to keep and returns how many
// were removed.
func (c *Cache) Prune(ctx context.Context, keep string) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM height_grids WHERE fingerprint<>?`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func encodeValues(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func decodeValues(raw []byte, n int) ([]float32, error) {
	if len(raw) != 4*n {
		return nil, fmt.Errorf("payload is %d bytes, want %d", len(raw), 4*n)
	}
	values := make([]float32, n)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return values, nil
}
