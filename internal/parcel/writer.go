package parcel

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/residents-cli/internal/model"
)

// WriteCSV writes the resident mask, one row per parcel, header included even
// when there are no parcels.
func WriteCSV(w io.Writer, parcels []*model.Parcel) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(model.ResidentRow{}); err != nil {
		return eris.Wrap(err, "parcel: encode header")
	}
	for _, p := range parcels {
		if err := enc.Encode(p.Row()); err != nil {
			return eris.Wrapf(err, "parcel: encode %s", p.RollNumber)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "parcel: flush csv")
	}
	return nil
}

// WriteCSVFile writes the resident mask to path.
func WriteCSVFile(path string, parcels []*model.Parcel) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "parcel: create %s", path)
	}
	if err := WriteCSV(f, parcels); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "parcel: close %s", path)
	}
	return nil
}
