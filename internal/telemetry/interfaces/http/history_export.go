package http

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"temperature-monitor/internal/telemetry/application"
)

// BuildHistoryXLSX renders the history projection as a single-sheet workbook.
func BuildHistoryXLSX(history application.History) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "history"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(sheet, "A1", "Timestamp")
	_ = f.SetCellValue(sheet, "B1", "Sensor 1 (°C)")
	_ = f.SetCellValue(sheet, "C1", "Sensor 2 (°C)")
	for i := 0; i < history.Len(); i++ {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), history.Timestamps[i])
		if v := history.Sensor1[i]; v != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), *v)
		}
		if v := history.Sensor2[i]; v != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), *v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HistoryExportHandler serves GET /api/temperature/history.xlsx.
type HistoryExportHandler struct {
	reader HistoryReader
	window time.Duration
	logger *log.Logger
}

// NewHistoryExportHandler constructs an export handler.
func NewHistoryExportHandler(reader HistoryReader, window time.Duration, logger *log.Logger) (*HistoryExportHandler, error) {
	if reader == nil {
		return nil, errors.New("temperature export: nil reader")
	}
	if window <= 0 {
		window = application.DefaultHistoryWindow
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HistoryExportHandler{reader: reader, window: window, logger: logger}, nil
}

// ServeHTTP streams the workbook.
func (h *HistoryExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	history, err := h.reader.History(r.Context(), h.window)
	if err != nil {
		h.logger.Printf("temperature export: %v", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	body, err := BuildHistoryXLSX(history)
	if err != nil {
		h.logger.Printf("temperature export: render error: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="temperature-history.xlsx"`)
	_, _ = w.Write(body)
}
