package recording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// A ClickHouseRecorder is a Recorder backed by a ClickHouse server, for
// sweep campaigns too large or too long-lived for a single SQLite file.
type ClickHouseRecorder struct {
	conn clickhouse.Conn

	mu         sync.Mutex
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewClickHouseRecorder connects to a ClickHouse server and returns a
// Recorder writing to it.
func NewClickHouseRecorder(
	addr, database, username, password string,
) Recorder {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		panic(err)
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		tables:    make(map[string]*table),
		batchSize: 100000,
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// CreateTable creates a MergeTree table shaped after a sample struct.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	structType := reflect.TypeOf(sampleEntry)
	columns := make([]string, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		columns = append(columns,
			field.Name+" "+chColumnType(field.Type.Kind()))
	}

	ddl := "CREATE TABLE IF NOT EXISTS " + tableName +
		" (" + strings.Join(columns, ", ") + ")" +
		" ENGINE = MergeTree() ORDER BY tuple()"

	err = r.conn.Exec(context.Background(), ddl)
	if err != nil {
		panic(err)
	}

	r.tables[tableName] = &table{
		structType: structType,
		entries:    []any{},
	}
}

// InsertData buffers one entry of the table's struct type.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	table, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)
	r.entryCount++
	mustFlush := r.entryCount >= r.batchSize

	r.mu.Unlock()

	if mustFlush {
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

// Flush sends all buffered entries in one batch per table.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, table := range r.tables {
		if len(table.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(err)
		}

		for _, entry := range table.entries {
			values := reflect.ValueOf(entry)
			v := make([]any, 0, values.NumField())

			for i := 0; i < values.NumField(); i++ {
				v = append(v, values.Field(i).Interface())
			}

			err := batch.Append(v...)
			if err != nil {
				panic(err)
			}
		}

		err = batch.Send()
		if err != nil {
			panic(err)
		}

		table.entries = nil
	}

	r.entryCount = 0
}

// Close flushes and drops the connection.
func (r *ClickHouseRecorder) Close() {
	r.Flush()

	err := r.conn.Close()
	if err != nil {
		panic(err)
	}
}

func chColumnType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64:
		return "Int64"
	case reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64:
		return "UInt64"
	case reflect.Float32, reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("kind %s cannot be stored", kind))
	}
}
