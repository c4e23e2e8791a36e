package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// BundleFileName is the default name of the ZIP of all tables.
const BundleFileName = "campaignlens_insights.zip"

// WriteZip writes every table of rep as a deflated CSV entry.
func WriteZip(w io.Writer, rep types.Report) error {
	zw := zip.NewWriter(w)
	for _, t := range types.Tables {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: FileName(t), Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("adding %s to bundle: %w", t, err)
		}
		if err := WriteCSV(f, rep, t); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	return nil
}

// Zip returns the bundle of rep as bytes.
func Zip(rep types.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
