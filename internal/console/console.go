package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codex-k8s/autoinstall-validator/internal/report"
	"github.com/codex-k8s/autoinstall-validator/internal/templates"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))
	bodyStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

// IsAccessibleMode reports whether forms should run in accessible mode.
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" || os.Getenv("TERM") == "dumb"
}

// FormatSuccessMessage styles a success line.
func FormatSuccessMessage(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// FormatErrorMessage styles an error line.
func FormatErrorMessage(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// FormatWarningMessage styles a notice line.
func FormatWarningMessage(msg string) string {
	return noticeStyle.Render("! " + msg)
}

// FormatInfoMessage styles an informational line.
func FormatInfoMessage(msg string) string {
	return infoStyle.Render("ℹ " + msg)
}

// FormatReport renders a report as a styled title followed by its localized body.
func FormatReport(r templates.Renderer, rep report.Report) string {
	title, err := r.Render(rep.Kind+".title", rep)
	if err != nil {
		title = rep.Kind
	}
	body, err := r.Render(rep.Kind+".body", rep)
	if err != nil {
		body = fallbackBody(rep)
	}

	var heading string
	switch rep.Status {
	case report.StatusSuccess:
		heading = FormatSuccessMessage(title)
	case report.StatusNotice:
		heading = FormatWarningMessage(title)
	default:
		heading = FormatErrorMessage(title)
	}
	return heading + "\n" + bodyStyle.Render(body)
}

// FormatReports renders reports separated by blank lines.
func FormatReports(r templates.Renderer, reports []report.Report) string {
	parts := make([]string, 0, len(reports))
	for _, rep := range reports {
		parts = append(parts, FormatReport(r, rep))
	}
	return strings.Join(parts, "\n\n")
}

func fallbackBody(rep report.Report) string {
	switch {
	case len(rep.Path) > 0 || rep.Kind == report.KindValidationError:
		return fmt.Sprintf("%s (%s)", rep.Message, rep.Location())
	case rep.File != "":
		return fmt.Sprintf("%s %s", rep.File, rep.Message)
	default:
		return rep.Message
	}
}
