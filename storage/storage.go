package storage

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Storage interface {
	Save(records ...*Record) error
	Flush() error
}

// Record is one finalized extraction result.
type Record struct {
	ID     int64
	Table  string
	URL    string
	Time   time.Time
	Fields []string // 列顺序
	Data   map[string]interface{}
}

var idGen *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	idGen = node
}

func NewRecord(table, url string, fields []string, data map[string]interface{}) *Record {
	return &Record{
		ID:     idGen.Generate().Int64(),
		Table:  table,
		URL:    url,
		Time:   time.Now(),
		Fields: fields,
		Data:   data,
	}
}

// Empty discards everything.
type Empty struct{}

func (Empty) Save(records ...*Record) error {
	return nil
}

func (Empty) Flush() error {
	return nil
}
