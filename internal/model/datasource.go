package model

// BackendKind identifies which execution model answers a question.
type BackendKind string

const (
	BackendRelational BackendKind = "relational"
	BackendTabular    BackendKind = "tabular"
	BackendTally      BackendKind = "tally"
)

// DatabaseType identifies a concrete relational engine.
type DatabaseType string

const (
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeMySQL      DatabaseType = "mysql"
)

// TabularFormat identifies a file format loadable into the in-memory
// tabular backend.
type TabularFormat string

const (
	TabularFormatCSV     TabularFormat = "csv"
	TabularFormatExcel   TabularFormat = "excel"
	TabularFormatParquet TabularFormat = "parquet"
	TabularFormatAvro    TabularFormat = "avro"
)

// DataSourceConfig describes the connected data source. Exactly one backend
// kind is active per gateway instance; reconnecting swaps the schema
// snapshot wholesale.
type DataSourceConfig struct {
	Kind BackendKind `mapstructure:"kind" json:"kind" validate:"required,oneof=relational tabular tally"`

	// Relational
	Type     DatabaseType `mapstructure:"type" json:"type,omitempty"`
	Host     string       `mapstructure:"host" json:"host,omitempty"`
	Port     int          `mapstructure:"port" json:"port,omitempty"`
	Database string       `mapstructure:"database" json:"database,omitempty"`
	Username string       `mapstructure:"username" json:"username,omitempty"`
	Password string       `mapstructure:"password" json:"-"`
	SSL      bool         `mapstructure:"ssl" json:"ssl,omitempty"`

	// Tabular
	Format TabularFormat `mapstructure:"format" json:"format,omitempty"`
	Path   string        `mapstructure:"path" json:"path,omitempty"`
}

// DSN builds the database/sql connection string for a relational source.
func (c *DataSourceConfig) DSN() string {
	switch c.Type {
	case DatabaseTypeMySQL:
		return mysqlDSN(c)
	default:
		return postgresDSN(c)
	}
}

// DriverName returns the registered database/sql driver name.
func (c *DataSourceConfig) DriverName() string {
	if c.Type == DatabaseTypeMySQL {
		return "mysql"
	}
	return "postgres"
}

// TallyConfig locates the legacy ERP gateway.
type TallyConfig struct {
	Host    string `mapstructure:"host" json:"host"`
	Port    int    `mapstructure:"port" json:"port"`
	Timeout int    `mapstructure:"timeout" json:"timeout"` // seconds
}

// SinkConfig locates the relational sink for incremental ledger persistence.
type SinkConfig struct {
	Enabled  bool         `mapstructure:"enabled" json:"enabled"`
	Type     DatabaseType `mapstructure:"type" json:"type"`
	Host     string       `mapstructure:"host" json:"host"`
	Port     int          `mapstructure:"port" json:"port"`
	Database string       `mapstructure:"database" json:"database"`
	Username string       `mapstructure:"username" json:"username"`
	Password string       `mapstructure:"password" json:"-"`

	// AutoRefreshInterval is the poll period, in seconds, for the background
	// FullExport sync. 0 disables the poller.
	AutoRefreshInterval int `mapstructure:"auto_refresh_interval" json:"autoRefreshInterval"`
}
