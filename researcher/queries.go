package researcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
)

// queryVariations are the angles used to pad a short query list.
var queryVariations = []string{
	"%s recent developments",
	"%s current status 2024",
	"%s latest news analysis",
	"%s expert opinions trends",
}

// parseQueries turns a model response into exactly QueryCount distinct
// queries. The response is read as a JSON array, then line by line; missing
// queries are filled with variations of question.
func parseQueries(response, question string) ([QueryCount]string, int) {
	var candidates []string
	if err := json.Unmarshal([]byte(llm.CleanJSON(response)), &candidates); err != nil {
		candidates = strings.Split(llm.StripFences(response), "\n")
	}

	var out [QueryCount]string
	seen := make(map[string]bool)
	n := 0
	add := func(q string) {
		q = cleanQuery(q)
		key := strings.ToLower(q)
		if n >= QueryCount || q == "" || seen[key] {
			return
		}
		seen[key] = true
		out[n] = q
		n++
	}

	for _, c := range candidates {
		add(c)
	}
	parsed := n
	for _, v := range queryVariations {
		add(fmt.Sprintf(v, strings.TrimSpace(question)))
	}
	return out, parsed
}

// cleanQuery strips list markers, numbering and quotes from one line.
func cleanQuery(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•")
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 && isDigits(line[:i]) {
		line = line[i+1:]
	}
	line = strings.TrimSpace(line)
	line = strings.Trim(line, `"'`+"`")
	line = strings.TrimSuffix(line, ",")
	line = strings.Trim(strings.TrimSpace(line), `"'`)
	if strings.HasSuffix(line, ":") || line == "[" || line == "]" {
		return ""
	}
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
