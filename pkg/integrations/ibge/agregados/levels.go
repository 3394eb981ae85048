package agregados

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/tabular"
)

// DefaultLevel is the territorial level queried when none is given.
const DefaultLevel = "N1"

//go:embed levels.txt
var levelsFile string

var levelCodeRegex = regexp.MustCompile(`^[Nn][0-9]+$`)

// Level is a territorial level of aggregation.
type Level struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
}

var levels = sync.OnceValue(func() map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(levelsFile))
	for sc.Scan() {
		code, desc, ok := strings.Cut(sc.Text(), " - ")
		if !ok {
			continue
		}
		out[strings.TrimSpace(code)] = strings.TrimSpace(desc)
	}
	return out
})

// Levels returns the known territorial levels ordered by code number.
func Levels() []Level {
	out := make([]Level, 0, len(levels()))
	for code, desc := range levels() {
		out = append(out, Level{Code: code, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return levelNumber(out[i].Code) < levelNumber(out[j].Code) })
	return out
}

// LevelDescription returns the description of a level code, or "" when
// the code is unknown.
func LevelDescription(code string) string {
	return levels()[strings.ToUpper(code)]
}

// ResolveLevel turns a level code ("N6", "n6") or description
// ("Município", "municipio") into a code, which must be one of available.
// The INVALID_LEVEL error lists the available levels as "<code> : <description>".
func ResolveLevel(level string, available []string) (string, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = DefaultLevel
	}

	code := ""
	if levelCodeRegex.MatchString(level) {
		code = strings.ToUpper(level)
	} else {
		want := integrations.Fold(level)
		for c, desc := range levels() {
			if integrations.Fold(desc) == want {
				code = c
				break
			}
		}
	}

	for _, a := range available {
		if code != "" && a == code {
			return code, nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "territorial level %q is not available; choose one of:", level)
	for _, a := range sortLevels(available) {
		fmt.Fprintf(&b, "\n%s : %s", a, LevelDescription(a))
	}
	return "", apierrors.New(apierrors.ErrCodeInvalidLevel, "%s", b.String())
}

// LevelsTable renders levels with one row each.
func LevelsTable(ls []Level) *tabular.Table {
	t := tabular.New("codigo", "descricao")
	for _, l := range ls {
		t.Append(tabular.Row{"codigo": l.Code, "descricao": l.Description})
	}
	return t
}

func sortLevels(codes []string) []string {
	out := append([]string(nil), codes...)
	sort.Slice(out, func(i, j int) bool { return levelNumber(out[i]) < levelNumber(out[j]) })
	return out
}

func levelNumber(code string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(code), "N"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
