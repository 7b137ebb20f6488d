package content

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrRecordNotFound = errors.New("content record not found")
	ErrRegionNotFound = errors.New("region not registered")
	ErrNotEditable    = errors.New("region not editable")
	ErrCommitInFlight = errors.New("commit already in flight for region")
	ErrInvalidRegion  = errors.New("page and region id are required")
)

// RegionKey identifica un slot de contenido dentro de una página.
type RegionKey struct {
	Page     string
	RegionID string
}

func NewRegionKey(page, regionID string) (RegionKey, error) {
	k := RegionKey{Page: strings.TrimSpace(page), RegionID: strings.TrimSpace(regionID)}
	if k.Page == "" || k.RegionID == "" {
		return RegionKey{}, ErrInvalidRegion
	}
	return k, nil
}

// RecordKey es la key del documento persistido: "<page>_<regionId>".
func (k RegionKey) RecordKey() string {
	return k.Page + "_" + k.RegionID
}

func (k RegionKey) String() string { return k.RecordKey() }

type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Source indica de dónde salió el baseline al registrar la región.
type Source string

const (
	SourcePersisted   Source = "persisted"
	SourceAuthored    Source = "authored"
	SourceFetchFailed Source = "fetch_failed"
)

// RegionSpec es lo que publica quien renderiza contenido editable.
type RegionSpec struct {
	Page      string
	RegionID  string
	Authored  string
	Multiline bool
}

// Region es el estado en memoria de un slot editable dentro de un workspace.
type Region struct {
	Key       RegionKey
	Authored  string
	Current   string
	Baseline  string
	Multiline bool
	Source    Source

	Editable  bool
	Focused   bool
	HintShown bool
	Status    Status
	SavedAt   time.Time
	LastError string
}

// Dirty: el contenido visible difiere del último persistido.
func (r Region) Dirty() bool { return r.Current != r.Baseline }

// StatusAt aplica el auto-dismiss del indicador "saved".
func (r Region) StatusAt(now time.Time, ttl time.Duration) Status {
	if r.Status == StatusSaved && ttl > 0 && !now.Before(r.SavedAt.Add(ttl)) {
		return StatusIdle
	}
	return r.Status
}

// Record es el documento persistido de una región.
type Record struct {
	Page      string
	RegionID  string
	Content   string
	UpdatedAt time.Time
	UpdatedBy string
}

func (r Record) Key() RegionKey { return RegionKey{Page: r.Page, RegionID: r.RegionID} }

// Result es el desenlace de una operación de edición.
type Result string

const (
	ResultUnchanged Result = "unchanged"
	ResultSaved     Result = "saved"
	ResultError     Result = "error"
	ResultCancelled Result = "cancelled"
	ResultIgnored   Result = "ignored"
)

// Outcome describe qué pasó con un commit/cancel y el estado resultante de la región.
type Outcome struct {
	Result Result
	Region Region
	Err    error
}

// KeyPress es una tecla relevante para la edición (Enter / Escape).
type KeyPress struct {
	Key   string
	Shift bool
}

const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// EditHint es el texto que se muestra una sola vez por región al primer foco.
const EditHint = "Press Escape to cancel, or click away to save"
