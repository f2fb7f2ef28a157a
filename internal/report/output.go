package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

// ZstdSuffix selects zstd compression in WriteJSON.
const ZstdSuffix = ".zst"

type countingWriter struct {
	io.Writer
	n uint64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.n += uint64(n)
	return n, err
}

// WriteSummary prints a human readable account of the run: one line per
// collection followed by its validation errors, then the totals.
func WriteSummary(w io.Writer, r RunReport) error {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(string(res.Status)), res.Collection)
		if res.Err == "" {
			fmt.Fprintf(&b, " (sampled %s of %s documents, %s)",
				humanize.Comma(res.SampleSize), humanize.Comma(res.TotalDocuments), res.Duration.Round(time.Millisecond))
		}
		b.WriteString("\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "    - %s\n", e.Message)
		}
	}
	fmt.Fprintf(&b, "\n%d collections: %d passed, %d failed, %s errors in %s\n",
		r.TotalCollections, r.PassedCount, r.FailedCount,
		humanize.Comma(int64(len(r.Errors()))), r.ExecutionTime.Round(time.Millisecond))

	_, err := io.WriteString(w, b.String())
	return err
}

// EncodeJSON writes the report as indented JSON.
func EncodeJSON(w io.Writer, r RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteJSON stores the report at path, compressed with zstd when the path
// ends in ZstdSuffix.
func WriteJSON(path string, r RunReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file %s: %w", path, cerr)
		}
	}()

	out := &countingWriter{Writer: f}
	if !strings.HasSuffix(path, ZstdSuffix) {
		if err := EncodeJSON(out, r); err != nil {
			return err
		}
		slog.Info("Report written", "path", path, "size", humanize.Bytes(out.n))
		return nil
	}

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := EncodeJSON(zw, r); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush zstd report: %w", err)
	}
	slog.Info("Report written", "path", path, "size", humanize.Bytes(out.n), "compression", "zstd")
	return nil
}
