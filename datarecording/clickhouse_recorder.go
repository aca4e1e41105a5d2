package datarecording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

type tableKind int

const (
	signalSampleKind tableKind = iota
	paramChangeKind
)

// ClickHouseRecorder records telemetry into a ClickHouse database. It keeps
// type-specific batches per table, avoiding per-entry reflection on the hot
// path.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	signalSampleBatches map[string][]SignalSample
	paramChangeBatches  map[string][]ParamChangeEntry

	tables     map[string]tableKind
	entryCount int
}

// NewClickHouseRecorder creates a DataRecorder backed by ClickHouse. It
// panics if the server cannot be reached; telemetry backends are wired at
// startup and a missing one is a fatal configuration error.
func NewClickHouseRecorder(
	host string,
	port int,
	database string,
	username string,
	password string,
	batchSize int,
) DataRecorder {
	if batchSize == 0 {
		batchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	recorder := &ClickHouseRecorder{
		conn:                conn,
		batchSize:           batchSize,
		signalSampleBatches: make(map[string][]SignalSample),
		paramChangeBatches:  make(map[string][]ParamChangeEntry),
		tables:              make(map[string]tableKind),
	}

	atexit.Register(func() { recorder.Flush() })

	return recorder
}

// CreateTable creates one of the telemetry tables with a
// ClickHouse-optimized schema. Only the telemetry entry types are supported.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var createSQL string
	var kind tableKind

	switch sampleEntry.(type) {
	case SignalSample:
		kind = signalSampleKind
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Tick UInt64,
				TimeSeconds Float64,
				Name String,
				Value Float64
			) ENGINE = MergeTree()
			ORDER BY (Name, Tick)
		`, tableName)

	case ParamChangeEntry:
		kind = paramChangeKind
		createSQL = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				Tick UInt64,
				TimeSeconds Float64,
				Name String,
				OldValue Float64,
				RequestedValue Float64,
				AppliedValue Float64,
				Clamped Bool
			) ENGINE = MergeTree()
			ORDER BY (Name, Tick)
		`, tableName)

	default:
		panic(fmt.Sprintf(
			"unsupported entry type %T for ClickHouse recording", sampleEntry))
	}

	err := r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = kind
}

// InsertData buffers one entry for batch insertion. The entry type must
// match the type the table was created with.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	kind, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	switch e := entry.(type) {
	case SignalSample:
		if kind != signalSampleKind {
			r.mu.Unlock()
			panic(fmt.Sprintf(
				"table %s does not store entries of type %T", tableName, e))
		}

		r.signalSampleBatches[tableName] =
			append(r.signalSampleBatches[tableName], e)
	case ParamChangeEntry:
		if kind != paramChangeKind {
			r.mu.Unlock()
			panic(fmt.Sprintf(
				"table %s does not store entries of type %T", tableName, e))
		}

		r.paramChangeBatches[tableName] =
			append(r.paramChangeBatches[tableName], e)
	default:
		r.mu.Unlock()
		panic(fmt.Sprintf(
			"unsupported entry type %T for table %s", entry, tableName))
	}

	r.entryCount++
	flush := r.entryCount >= r.batchSize
	r.mu.Unlock()

	if flush {
		r.Flush()
	}
}

// ListTables returns the names of all created tables.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for table := range r.tables {
		tables = append(tables, table)
	}

	return tables
}

// Flush sends all buffered entries to ClickHouse, per table.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()

	for tableName, entries := range r.signalSampleBatches {
		if len(entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch: %w", err))
		}

		for _, e := range entries {
			err = batch.Append(e.Tick, e.TimeSeconds, e.Name, e.Value)
			if err != nil {
				panic(fmt.Errorf("failed to append entry: %w", err))
			}
		}

		if err := batch.Send(); err != nil {
			panic(fmt.Errorf("failed to send batch: %w", err))
		}

		r.signalSampleBatches[tableName] = entries[:0]
	}

	for tableName, entries := range r.paramChangeBatches {
		if len(entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch: %w", err))
		}

		for _, e := range entries {
			err = batch.Append(e.Tick, e.TimeSeconds, e.Name,
				e.OldValue, e.RequestedValue, e.AppliedValue, e.Clamped)
			if err != nil {
				panic(fmt.Errorf("failed to append entry: %w", err))
			}
		}

		if err := batch.Send(); err != nil {
			panic(fmt.Errorf("failed to send batch: %w", err))
		}

		r.paramChangeBatches[tableName] = entries[:0]
	}

	r.entryCount = 0
}

// Close flushes buffered entries and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	r.Flush()
	return r.conn.Close()
}
