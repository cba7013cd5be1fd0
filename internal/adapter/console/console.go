package console

import (
	"ImageAnalyst/internal/ai"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// Printer выводит результат анализа в терминал: ответ модели как markdown, ошибку одной строкой.
type Printer struct {
	out      io.Writer
	errOut   io.Writer
	renderer *glamour.TermRenderer
}

// NewPrinter plain=true отключает цвета (вывод в файл или пайп).
func NewPrinter(out, errOut io.Writer, plain bool, width int) (*Printer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Printer{out: out, errOut: errOut, renderer: r}, nil
}

// Print возвращает false, если анализ не удался.
func (p *Printer) Print(res ai.AnalysisResult) bool {
	if !res.OK() {
		fmt.Fprintf(p.errOut, "An error occurred (%s): %s\n", res.Kind, res.Message)
		return false
	}
	rendered, err := p.renderer.Render(res.Text)
	if err != nil {
		// текст ответа важнее оформления
		fmt.Fprintln(p.out, res.Text)
		return true
	}
	fmt.Fprint(p.out, rendered)
	return true
}
