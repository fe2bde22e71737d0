package http

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"

	alarms "temperature-monitor/internal/alarms/domain"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

// BuildAlarmReportPDF renders alarms as a one-table PDF report.
func BuildAlarmReportPDF(list []alarms.Alarm, window time.Duration, generated time.Time, zone *time.Location) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Temperature Alarm Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Window: last %s", window))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", telemetry.FormatTimestamp(generated.In(zone))))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Alarms: %d", len(list)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Sensor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Temperature (C)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, alarm := range list {
		temperature := "N/A"
		if alarm.Temperature != nil {
			temperature = fmt.Sprintf("%.2f", *alarm.Temperature)
		}
		pdf.CellFormat(50, 6, telemetry.FormatTimestamp(alarm.Timestamp.In(zone)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, string(alarm.Sensor), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, temperature, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportHandler serves GET /api/alarms/report.pdf.
type ReportHandler struct {
	lister AlarmLister
	window time.Duration
	zone   *time.Location
	now    func() time.Time
	logger *log.Logger
}

// NewReportHandler constructs a report handler.
func NewReportHandler(lister AlarmLister, window time.Duration, zone *time.Location, logger *log.Logger) (*ReportHandler, error) {
	if lister == nil {
		return nil, errors.New("alarm report: nil lister")
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	if zone == nil {
		zone = telemetry.FixedZone(telemetry.DefaultOffset)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReportHandler{lister: lister, window: window, zone: zone, now: time.Now, logger: logger}, nil
}

// ServeHTTP streams the PDF report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.lister.ListRecent(r.Context(), h.window)
	if err != nil {
		h.logger.Printf("alarm report: list error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body, err := BuildAlarmReportPDF(list, h.window, h.now(), h.zone)
	if err != nil {
		h.logger.Printf("alarm report: render error: %v", err)
		http.Error(w, "report failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="alarm-report.pdf"`)
	_, _ = w.Write(body)
}
