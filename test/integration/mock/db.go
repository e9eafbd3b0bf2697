package mock

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var once sync.Once
var db *Db

// Db is an in-memory SQLite database shared by all scenarios. Tables are
// migrated once and emptied between scenarios.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
	schema string
}

// NewDb opens the shared database, migrating models keyed by table name.
func NewDb(schema string, models map[string]any) *Db {
	once.Do(
		func() {
			db = open(schema, models)
		},
	)

	return db
}

func open(schema string, models map[string]any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		schema: schema,
		models: models,
	}

	if err := newDbMock.migrate(); err != nil {
		panic(fmt.Sprintf("failed to migrate database. err: %s", err.Error()))
	}

	return newDbMock
}

func (d *Db) modelList() []any {
	list := make([]any, 0, len(d.models))
	for _, model := range d.models {
		list = append(list, model)
	}
	return list
}

func (d *Db) migrate() error {
	if err := d.DbConn.Exec("ATTACH ':memory:' AS " + d.schema).Error; err != nil &&
		!strings.Contains(err.Error(), "is already in use") {
		return err
	}

	if err := d.DbConn.AutoMigrate(d.modelList()...); err != nil {
		return err
	}

	for table, model := range d.models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table %s was not created", table)
		}
	}
	return nil
}

// ClearDB deletes every row, children first so foreign keys hold.
func (d *Db) ClearDB() error {
	tables := make([]string, 0, len(d.models))
	for table := range d.models {
		tables = append(tables, table)
	}

	// Dependent rows may block a parent delete; retry until a pass succeeds.
	for attempt := 0; attempt < len(tables)+1; attempt++ {
		var failed error
		for _, table := range tables {
			err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Unscoped().Delete(d.models[table]).Error
			if err != nil {
				failed = err
			}
		}
		if failed == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to clear database after %d attempts", len(tables)+1)
}

func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}
