package executor

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xuri/excelize/v2"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// LoadFrame reads a file source into memory. The frame name doubles as the
// table name for resolution, derived from the file name.
func LoadFrame(cfg *model.DataSourceConfig) (*Frame, error) {
	name := frameName(cfg.Path)

	var (
		columns []string
		rows    [][]string
		err     error
	)
	switch cfg.Format {
	case model.TabularFormatCSV:
		columns, rows, err = loadCSV(cfg.Path)
	case model.TabularFormatExcel:
		columns, rows, err = loadExcel(cfg.Path)
	case model.TabularFormatParquet:
		columns, rows, err = loadParquet(cfg.Path)
	case model.TabularFormatAvro:
		columns, rows, err = loadAvro(cfg.Path)
	default:
		return nil, utils.NewAppError(utils.ErrCodeInvalidRequest, nil,
			fmt.Sprintf("unsupported tabular format %q", cfg.Format))
	}
	if err != nil {
		return nil, utils.NewBackendFailure(err, fmt.Sprintf("loading %s", cfg.Path))
	}
	if len(columns) == 0 {
		return nil, utils.NewBackendFailure(nil, fmt.Sprintf("%s has no header row", cfg.Path))
	}
	return NewFrame(name, columns, rows), nil
}

func frameName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	if name == "" {
		return "data"
	}
	return name
}

func loadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

func loadExcel(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

func loadParquet(path string) ([]string, [][]string, error) {
	pf, err := openLocalParquet(path)
	if err != nil {
		return nil, nil, err
	}
	defer pf.Close()

	pr, err := reader.NewParquetReader(pf, nil, 4)
	if err != nil {
		return nil, nil, err
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	if num == 0 {
		return nil, nil, nil
	}
	recs, err := pr.ReadByNumber(num)
	if err != nil {
		return nil, nil, err
	}

	// parquet-go yields reflected structs; round-trip through JSON to get
	// uniform maps.
	raw, err := json.Marshal(recs)
	if err != nil {
		return nil, nil, err
	}
	var maps []map[string]interface{}
	if err := json.Unmarshal(raw, &maps); err != nil {
		return nil, nil, err
	}
	return mapsToTable(maps)
}

func loadAvro(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	ocf, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, nil, err
	}

	var maps []map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, nil, err
		}
		if m, ok := datum.(map[string]interface{}); ok {
			maps = append(maps, m)
		}
	}
	if err := ocf.Err(); err != nil {
		return nil, nil, err
	}
	return mapsToTable(maps)
}

// mapsToTable flattens record maps into a header plus string rows. Column
// order is the sorted key set of the first record, for determinism.
func mapsToTable(maps []map[string]interface{}) ([]string, [][]string, error) {
	if len(maps) == 0 {
		return nil, nil, nil
	}

	columns := make([]string, 0, len(maps[0]))
	for k := range maps[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]string, 0, len(maps))
	for _, m := range maps {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellString(m[col])
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// localParquetFile adapts an os.File to the parquet source interface.
type localParquetFile struct {
	file *os.File
}

func openLocalParquet(path string) (source.ParquetFile, error) {
	f := &localParquetFile{}
	return f.Open(path)
}

func (f *localParquetFile) Open(name string) (source.ParquetFile, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &localParquetFile{file: file}, nil
}

func (f *localParquetFile) Create(name string) (source.ParquetFile, error) {
	file, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &localParquetFile{file: file}, nil
}

func (f *localParquetFile) Read(p []byte) (int, error)  { return f.file.Read(p) }
func (f *localParquetFile) Write(p []byte) (int, error) { return f.file.Write(p) }
func (f *localParquetFile) Close() error                { return f.file.Close() }

func (f *localParquetFile) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}
