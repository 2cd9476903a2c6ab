package sqlstorage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/3lfar7/tripadvparser/sqldb"
	"github.com/3lfar7/tripadvparser/storage"
	"go.uber.org/zap"
)

type SQLStorage struct {
	dataDocker []*storage.Record // 分批输出结果缓存
	db         sqldb.DBer
	Table      map[string][]string
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return newStorage(db, options), nil
}

func newStorage(db sqldb.DBer, options options) *SQLStorage {
	if options.BatchCount < 1 {
		options.BatchCount = 1
	}

	return &SQLStorage{
		db:      db,
		Table:   make(map[string][]string),
		options: options,
	}
}

func (s *SQLStorage) Save(records ...*storage.Record) error {
	for _, r := range records {
		if _, ok := s.Table[r.Table]; !ok {
			// 创建表
			err := s.db.CreateTable(sqldb.TableData{
				TableName:   r.Table,
				ColumnNames: getFields(r.Fields),
			})
			if err != nil {
				s.logger.Error("create table failed", zap.String("table", r.Table), zap.Error(err))
				return fmt.Errorf("create table %s:%w", r.Table, err)
			}

			s.Table[r.Table] = r.Fields
		}

		// 一批数据只写一张表
		if len(s.dataDocker) > 0 && s.dataDocker[0].Table != r.Table {
			if err := s.Flush(); err != nil {
				return err
			}
		}

		s.dataDocker = append(s.dataDocker, r)

		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

func getFields(fields []string) []sqldb.Field {
	columnNames := []sqldb.Field{
		{Title: "id", Type: "BIGINT NOT NULL PRIMARY KEY"},
	}
	for _, field := range fields {
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}

	columnNames = append(columnNames,
		sqldb.Field{Title: "URL", Type: "VARCHAR(255)"},
		sqldb.Field{Title: "Time", Type: "VARCHAR(255)"},
	)

	return columnNames
}

func (s *SQLStorage) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}

	defer func() {
		s.dataDocker = nil
	}()

	table := s.dataDocker[0].Table
	fields := s.Table[table]
	args := make([]interface{}, 0, len(s.dataDocker)*(len(fields)+3))

	for _, r := range s.dataDocker {
		args = append(args, r.ID)
		for _, field := range fields {
			args = append(args, encode(r.Data[field]))
		}
		args = append(args, r.URL, r.Time.Format(time.RFC3339))
	}

	err := s.db.Insert(sqldb.TableData{
		TableName:   table,
		ColumnNames: getFields(fields),
		Args:        args,
		DataCount:   len(s.dataDocker),
	})
	if err != nil {
		s.logger.Error("insert data failed", zap.String("table", table), zap.Error(err))
		return fmt.Errorf("insert %s:%w", table, err)
	}
	s.logger.Debug("records saved", zap.String("table", table), zap.Int("count", len(s.dataDocker)))

	return nil
}

// Close flushes what is left and closes the database.
func (s *SQLStorage) Close() error {
	err := s.Flush()
	if c, ok := s.db.(interface{ Close() error }); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

func encode(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		j, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(j)
	}
}
