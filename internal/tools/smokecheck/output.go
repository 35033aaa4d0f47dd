package smokecheck

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(2)
)

type ciResult struct {
	Check   string   `json:"check"`
	Passed  bool     `json:"passed"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func printResult(w io.Writer, ci bool, details []string, err error) {
	if ci {
		res := ciResult{Check: "smokecheck run", Passed: err == nil, Details: details}
		if err != nil {
			res.Error = err.Error()
		}
		_ = json.NewEncoder(w).Encode(res)
		return
	}

	for _, d := range details {
		fmt.Fprintln(w, detailStyle.Render(d))
	}
	if err != nil {
		fmt.Fprintln(w, failStyle.Render("FAIL"), err.Error())
		return
	}
	fmt.Fprintln(w, passStyle.Render("PASS"), "login path healthy")
}
