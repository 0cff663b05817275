package data

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"bifacial-compare/internal/log"
	"bifacial-compare/internal/model"
)

// Library is the set of module and inverter datasheets a run can reference.
type Library struct {
	Modules   map[string]model.Module
	Inverters map[string]model.Inverter
}

// LibraryError represents a failure to fetch, parse or resolve library data.
type LibraryError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *LibraryError) Error() string {
	return e.Message
}

// BuiltinLibrary returns the datasheets shipped with the tool.
func BuiltinLibrary() *Library {
	return &Library{
		Modules: map[string]model.Module{
			"Zytech_Solar_ZT320P": {
				Name: "Zytech_Solar_ZT320P", Technology: "Multi-c-Si",
				PDC0: 320.19, GammaPDC: -0.00431,
			},
			"Trina_Solar_TSM_300DEG5C_07_II_": {
				Name: "Trina_Solar_TSM_300DEG5C_07_II_", Technology: "Mono-c-Si",
				PDC0: 300.11, GammaPDC: -0.0039, Bifacial: true, Bifaciality: 0.75,
			},
			"Canadian_Solar_CS5P_220M___2009_": {
				Name: "Canadian_Solar_CS5P_220M___2009_", Technology: "Mono-c-Si",
				PDC0: 220, GammaPDC: -0.0045,
			},
		},
		Inverters: map[string]model.Inverter{
			"iPower__SHO_5_2__240V_": {
				Name: "iPower__SHO_5_2__240V_", Paco: 5200, Pdco: 5416.67, Vac: 240,
			},
			"ABB__MICRO_0_25_I_OUTD_US_208__208V_": {
				Name: "ABB__MICRO_0_25_I_OUTD_US_208__208V_", Paco: 250, Pdco: 259.52, Vac: 208,
			},
			"ABB__MICRO_0_25_I_OUTD_US_240__240V_": {
				Name: "ABB__MICRO_0_25_I_OUTD_US_240__240V_", Paco: 250, Pdco: 259.59, Vac: 240,
			},
		},
	}
}

// Module looks up a module by normalized name.
func (l *Library) Module(id string) (model.Module, error) {
	m, ok := l.Modules[NormalizeName(id)]
	if !ok {
		return model.Module{}, &LibraryError{Code: "NOT_FOUND", Message: fmt.Sprintf("module %q not found in library", id)}
	}
	return m, nil
}

// Inverter looks up an inverter by normalized name.
func (l *Library) Inverter(id string) (model.Inverter, error) {
	inv, ok := l.Inverters[NormalizeName(id)]
	if !ok {
		return model.Inverter{}, &LibraryError{Code: "NOT_FOUND", Message: fmt.Sprintf("inverter %q not found in library", id)}
	}
	return inv, nil
}

func (l *Library) ModuleNames() []string {
	names := make([]string, 0, len(l.Modules))
	for n := range l.Modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (l *Library) InverterNames() []string {
	names := make([]string, 0, len(l.Inverters))
	for n := range l.Inverters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NormalizeName maps a datasheet name to its library key: every character that
// is not a letter or digit becomes "_".
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// LibraryClient fetches SAM-format datasheet CSVs from a URL or local path.
type LibraryClient struct {
	Client *http.Client
}

// NewLibraryClient creates a client with a 30 second request timeout.
func NewLibraryClient() *LibraryClient {
	return &LibraryClient{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns the raw bytes at source, which is an http(s) URL or a file path.
func (c *LibraryClient) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read library file: %w", err)
		}
		return raw, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Warnw("library request failed", "source", source, "duration", duration, "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debugw("library response", "source", source, "status", resp.StatusCode, "duration", duration)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &LibraryError{
			StatusCode: resp.StatusCode,
			Code:       "NOT_FOUND",
			Message:    fmt.Sprintf("library source not found: %s", source),
		}
	default:
		return nil, &LibraryError{
			StatusCode: resp.StatusCode,
			Code:       "HTTP_ERROR",
			Message:    fmt.Sprintf("library source returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}

// LoadLibrary starts from the built-in catalog and overlays any configured sources.
func LoadLibrary(ctx context.Context, client *LibraryClient, modulesSrc, invertersSrc string) (*Library, error) {
	lib := BuiltinLibrary()
	if modulesSrc != "" {
		raw, err := client.Fetch(ctx, modulesSrc)
		if err != nil {
			return nil, err
		}
		mods, err := ParseModulesCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		for k, v := range mods {
			lib.Modules[k] = v
		}
		log.Infow("loaded module library", "source", modulesSrc, "count", len(mods))
	}
	if invertersSrc != "" {
		raw, err := client.Fetch(ctx, invertersSrc)
		if err != nil {
			return nil, err
		}
		invs, err := ParseInvertersCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		for k, v := range invs {
			lib.Inverters[k] = v
		}
		log.Infow("loaded inverter library", "source", invertersSrc, "count", len(invs))
	}
	return lib, nil
}

// ParseModulesCSV reads a SAM CEC module table. Columns used: Name, Technology,
// Bifacial, STC (W) and gamma_r (%/°C).
func ParseModulesCSV(r io.Reader) (map[string]model.Module, error) {
	rows, cols, err := readSAM(r, "Name", "STC", "gamma_r")
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Module, len(rows))
	for i, row := range rows {
		name := get(row, cols, "Name")
		if name == "" {
			continue
		}
		stc, err := parseNum(row, cols, "STC", i)
		if err != nil {
			return nil, err
		}
		gamma, err := parseNum(row, cols, "gamma_r", i)
		if err != nil {
			return nil, err
		}
		key := NormalizeName(name)
		out[key] = model.Module{
			Name:       key,
			Technology: get(row, cols, "Technology"),
			PDC0:       stc,
			GammaPDC:   gamma / 100,
			Bifacial:   get(row, cols, "Bifacial") == "1",
		}
	}
	return out, nil
}

// ParseInvertersCSV reads a SAM CEC inverter table. Columns used: Name, Vac, Paco, Pdco.
func ParseInvertersCSV(r io.Reader) (map[string]model.Inverter, error) {
	rows, cols, err := readSAM(r, "Name", "Paco", "Pdco")
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Inverter, len(rows))
	for i, row := range rows {
		name := get(row, cols, "Name")
		if name == "" {
			continue
		}
		paco, err := parseNum(row, cols, "Paco", i)
		if err != nil {
			return nil, err
		}
		pdco, err := parseNum(row, cols, "Pdco", i)
		if err != nil {
			return nil, err
		}
		vac, _ := strconv.ParseFloat(get(row, cols, "Vac"), 64)
		key := NormalizeName(name)
		out[key] = model.Inverter{Name: key, Paco: paco, Pdco: pdco, Vac: vac}
	}
	return out, nil
}

// readSAM parses the header, skips the two unit/metadata rows, and indexes columns.
func readSAM(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, &LibraryError{Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid library CSV: %v", err)}
	}
	if len(records) < 3 {
		return nil, nil, &LibraryError{Code: "PARSE_ERROR", Message: "library CSV needs a header and two metadata rows"}
	}
	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, &LibraryError{Code: "PARSE_ERROR", Message: fmt.Sprintf("library CSV missing column %q", name)}
		}
	}
	return records[3:], cols, nil
}

func get(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseNum(row []string, cols map[string]int, name string, i int) (float64, error) {
	v, err := strconv.ParseFloat(get(row, cols, name), 64)
	if err != nil {
		return 0, &LibraryError{
			Code:    "PARSE_ERROR",
			Message: fmt.Sprintf("library CSV data row %d: bad %s value %q", i+1, name, get(row, cols, name)),
		}
	}
	return v, nil
}

// IsNotFound reports whether err is a library lookup miss.
func IsNotFound(err error) bool {
	var le *LibraryError
	return errors.As(err, &le) && le.Code == "NOT_FOUND"
}
