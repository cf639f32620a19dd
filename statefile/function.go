package statefile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sametz/fit-o-mat/model"
)

const (
	parametersTag = "<PARAMETERS>"
	formulaTag    = "<FORMULA>"
)

// WriteFunction writes a saved-function file: the parameter block followed
// by the raw formula text.
func WriteFunction(w io.Writer, params model.ParamSet, formula string) error {
	var b strings.Builder
	b.WriteString(parametersTag + "\n")
	for _, p := range params {
		flag := 0
		if p.Free {
			flag = 1
		}
		fmt.Fprintf(&b, "%s, %s, %d\n", p.Name, strconv.FormatFloat(p.Value, 'g', -1, 64), flag)
	}
	b.WriteString(formulaTag + "\n")
	b.WriteString(formula)
	if !strings.HasSuffix(formula, "\n") {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// ReadFunction parses a saved-function file. The formula text is returned
// verbatim, trailing newline trimmed; parameters get undefined confidence.
func ReadFunction(r io.Reader) (model.ParamSet, string, error) {
	scanner := bufio.NewScanner(r)

	var params model.ParamSet
	var formulaLines []string
	section := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case parametersTag:
			section = parametersTag
			continue
		case formulaTag:
			section = formulaTag
			continue
		}

		switch section {
		case parametersTag:
			if strings.TrimSpace(line) == "" {
				continue
			}
			p, err := parseParamLine(line)
			if err != nil {
				return nil, "", err
			}
			params = append(params, p)
		case formulaTag:
			formulaLines = append(formulaLines, line)
		default:
			if strings.TrimSpace(line) != "" {
				return nil, "", fmt.Errorf("unexpected content before %s block: %q", parametersTag, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}
	if section == "" {
		return nil, "", fmt.Errorf("not a saved-function file: missing %s block", parametersTag)
	}

	formula := strings.TrimRight(strings.Join(formulaLines, "\n"), "\n")
	if strings.TrimSpace(formula) == "" {
		return nil, "", fmt.Errorf("saved-function file has an empty %s block", formulaTag)
	}

	return params, formula, nil
}

func parseParamLine(line string) (model.Param, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return model.Param{}, fmt.Errorf("malformed parameter line %q: want 'name, value, isFreeFlag'", line)
	}
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return model.Param{}, fmt.Errorf("malformed parameter line %q: empty name", line)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return model.Param{}, fmt.Errorf("malformed parameter line %q: %w", line, err)
	}
	flag := strings.TrimSpace(fields[2])
	free := flag == "1" || strings.EqualFold(flag, "true")
	if !free && flag != "0" && !strings.EqualFold(flag, "false") {
		return model.Param{}, fmt.Errorf("malformed parameter line %q: flag must be 0 or 1", line)
	}

	return model.NewParam(name, value, free), nil
}
