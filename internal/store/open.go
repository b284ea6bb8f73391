package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MongoStore)(nil)
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options, log *logrus.Logger) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(opts.SQLitePath, log)
	case DriverMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", opts.Driver)
	}
}
