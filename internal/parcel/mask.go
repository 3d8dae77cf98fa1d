package parcel

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/residents-cli/internal/fetcher"
	"github.com/sells-group/residents-cli/internal/model"
)

// MaskEntry is the neighbourhood assignment of one parcel, as produced by
// the spatial join of parcel centroids against neighbourhood polygons.
type MaskEntry struct {
	NeighbourhoodID *int
	Name            string
	Population      *int
}

// Mask maps roll numbers to neighbourhood assignments.
type Mask map[string]MaskEntry

type rawMaskRow struct {
	RollNumber      string `csv:"Roll Number"`
	NeighbourhoodID string `csv:"neighbourhood_id"`
	Name            string `csv:"name"`
	Population      string `csv:"population"`
}

// ReadMaskFile decodes the neighbourhood mask at path.
func ReadMaskFile(path string) (Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open mask %s", path)
	}
	defer f.Close() //nolint:errcheck

	m, err := DecodeMask(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: read mask %s", path)
	}
	return m, nil
}

// DecodeMask reads a mask table. The first row for a roll number wins.
func DecodeMask(r io.Reader) (Mask, error) {
	dec, err := fetcher.NewCSVDecoder(r, fetcher.CSVOptions{LazyQuotes: true})
	if err != nil {
		return nil, err
	}
	missing := fetcher.MissingColumns(dec.Header(), ColRollNumber, ColNeighbourhoodID, ColPopulation)
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}

	m := make(Mask)
	for line := 1; ; line++ {
		var raw rawMaskRow
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "parcel: decode mask row %d", line)
		}
		roll := strings.TrimSpace(raw.RollNumber)
		if roll == "" {
			continue
		}
		if _, ok := m[roll]; ok {
			continue
		}
		m[roll] = MaskEntry{
			NeighbourhoodID: ParseInt(raw.NeighbourhoodID),
			Name:            strings.TrimSpace(raw.Name),
			Population:      ParseInt(raw.Population),
		}
	}
	return m, nil
}

// Join keeps the parcels present in the mask, in input order, with their
// neighbourhood columns replaced by the mask's. It returns the number of
// parcels dropped for having no mask entry.
func Join(parcels []*model.Parcel, m Mask) ([]*model.Parcel, int) {
	out := make([]*model.Parcel, 0, len(parcels))
	dropped := 0
	for _, p := range parcels {
		e, ok := m[p.RollNumber]
		if !ok {
			dropped++
			continue
		}
		j := p.Clone()
		j.NeighbourhoodID = e.NeighbourhoodID
		j.NeighbourhoodName = e.Name
		j.Population = e.Population
		out = append(out, j)
	}
	return out, dropped
}

// ResidentCounts maps roll numbers to allocated residents.
type ResidentCounts map[string]int

type rawResidentRow struct {
	RollNumber string `csv:"Roll Number"`
	Residents  string `csv:"residents"`
}

// ReadResidentsFile decodes the resident counts of a resident mask at path.
func ReadResidentsFile(path string) (ResidentCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open resident mask %s", path)
	}
	defer f.Close() //nolint:errcheck

	rc, err := DecodeResidents(f)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: read resident mask %s", path)
	}
	return rc, nil
}

// DecodeResidents reads the Roll Number and residents columns of a resident
// mask. Unparseable counts are read as 0; the first row for a roll number wins.
func DecodeResidents(r io.Reader) (ResidentCounts, error) {
	dec, err := fetcher.NewCSVDecoder(r, fetcher.CSVOptions{LazyQuotes: true})
	if err != nil {
		return nil, err
	}
	if missing := fetcher.MissingColumns(dec.Header(), ColRollNumber, ColResidents); len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}

	rc := make(ResidentCounts)
	for line := 1; ; line++ {
		var raw rawResidentRow
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "parcel: decode resident row %d", line)
		}
		roll := strings.TrimSpace(raw.RollNumber)
		if _, ok := rc[roll]; ok || roll == "" {
			continue
		}
		n := 0
		if v := ParseInt(raw.Residents); v != nil && *v > 0 {
			n = *v
		}
		rc[roll] = n
	}
	return rc, nil
}

// JoinResidents keeps the parcels present in rc, in input order, with their
// resident counts set. It returns the number of parcels dropped.
func JoinResidents(parcels []*model.Parcel, rc ResidentCounts) ([]*model.Parcel, int) {
	out := make([]*model.Parcel, 0, len(parcels))
	dropped := 0
	for _, p := range parcels {
		n, ok := rc[p.RollNumber]
		if !ok {
			dropped++
			continue
		}
		j := p.Clone()
		j.Residents = n
		out = append(out, j)
	}
	return out, dropped
}
