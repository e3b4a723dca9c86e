package simulate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/krpsim/krpsim-go/internal/domain/optimizer"
)

// LoadedConfig is everything a .krpsim-style process file supplies: initial
// stocks, the process list, and the optimize directive's target names.
// Parsing this file is explicitly out of the core's contract (§6) — the
// core only ever sees the already-parsed shapes this type holds.
type LoadedConfig struct {
	Stocks    optimizer.Stocks
	Processes []*optimizer.Process
	Targets   []string
}

// ParseConfigFile reads a process definition file of the form:
//
//	stock_name:quantity
//	process_name:(need:qty;...):(result:qty;...):delay
//	optimize:(target;...)
//
// Blank lines and lines starting with "#" are ignored. The optimize line
// must be the last non-comment line.
func ParseConfigFile(path string) (*LoadedConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig parses a process definition from an arbitrary reader, the
// form ParseConfigFile delegates to after opening its path.
func ParseConfig(r io.Reader) (*LoadedConfig, error) {
	stocks := optimizer.Stocks{}
	var processNames []string
	var processes []*optimizer.Process
	var targets []string
	optimizeSeen := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "optimize:"):
			if optimizeSeen {
				return nil, fmt.Errorf("line %d: multiple optimize lines not allowed", lineNo)
			}
			optimizeSeen = true
			content := strings.TrimSpace(strings.TrimPrefix(line, "optimize:"))
			if !strings.HasPrefix(content, "(") || !strings.HasSuffix(content, ")") {
				return nil, fmt.Errorf("line %d: malformed optimize line - must be optimize:(...)", lineNo)
			}
			for _, t := range strings.Split(strings.Trim(content, "()"), ";") {
				t = strings.TrimSpace(t)
				if t == "" {
					continue
				}
				if t != "time" {
					if _, ok := stocks[t]; !ok {
						return nil, fmt.Errorf("line %d: invalid optimize target %q - not in stocks", lineNo, t)
					}
				}
				targets = append(targets, t)
			}

		case strings.Contains(line, ":") && !strings.Contains(line, "("):
			if optimizeSeen {
				return nil, fmt.Errorf("line %d: stock definitions must come before optimize directive", lineNo)
			}
			if strings.Count(line, ":") != 1 {
				return nil, fmt.Errorf("line %d: invalid stock format - expected 'name:quantity'", lineNo)
			}
			name, qtyStr, _ := strings.Cut(line, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("line %d: empty stock name", lineNo)
			}
			if _, exists := stocks[name]; exists {
				return nil, fmt.Errorf("line %d: duplicate stock definition %q", lineNo, name)
			}
			qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("line %d: invalid quantity for stock %q", lineNo, name)
			}
			stocks[name] = qty

		case strings.Contains(line, "("):
			if optimizeSeen {
				return nil, fmt.Errorf("line %d: process definitions must come before optimize directive", lineNo)
			}
			name, remainder, found := strings.Cut(line, ":")
			if !found {
				return nil, fmt.Errorf("line %d: missing ':' after process name", lineNo)
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("line %d: empty process name", lineNo)
			}
			for _, existing := range processNames {
				if existing == name {
					return nil, fmt.Errorf("line %d: duplicate process name %q", lineNo, name)
				}
			}

			needs, results, delay, err := parseProcessBody(remainder)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid process format - expected 'name:(needs):(results):delay' - %w", lineNo, err)
			}
			enrichStocks(stocks, needs)
			enrichStocks(stocks, results)
			processNames = append(processNames, name)
			processes = append(processes, optimizer.NewProcess(name, needs, results, delay))

		default:
			return nil, fmt.Errorf("line %d: wrong line format %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(processes) == 0 {
		return nil, fmt.Errorf("no processes defined in configuration file")
	}

	return &LoadedConfig{Stocks: stocks, Processes: processes, Targets: targets}, nil
}

func parseProcessBody(remainder string) (needs, results map[string]int, delay int, err error) {
	parts := strings.SplitN(remainder, "):(", 2)
	if len(parts) != 2 {
		return nil, nil, 0, fmt.Errorf("invalid format")
	}

	needsPart := parts[0]
	if !strings.HasPrefix(needsPart, "(") {
		needsPart = "(" + needsPart
	}
	needs, err = parseStockPairs(needsPart)
	if err != nil {
		return nil, nil, 0, err
	}

	resultsDelay := strings.SplitN(parts[1], "):", 2)
	if len(resultsDelay) != 2 {
		return nil, nil, 0, fmt.Errorf("invalid format")
	}
	results, err = parseStockPairs("(" + resultsDelay[0] + ")")
	if err != nil {
		return nil, nil, 0, err
	}

	delay, err = strconv.Atoi(strings.TrimSpace(resultsDelay[1]))
	if err != nil || delay <= 0 {
		return nil, nil, 0, fmt.Errorf("delay must be positive, got %q", resultsDelay[1])
	}

	return needs, results, delay, nil
}

func parseStockPairs(spec string) (map[string]int, error) {
	content := strings.Trim(strings.TrimSpace(spec), "()")
	pairs := map[string]int{}
	if strings.TrimSpace(content) == "" {
		return pairs, nil
	}
	for _, pair := range strings.Split(content, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if strings.Count(pair, ":") != 1 {
			return nil, fmt.Errorf("invalid stock format %q", pair)
		}
		name, qtyStr, _ := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty stock name")
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("invalid quantity for %q", name)
		}
		pairs[name] = qty
	}
	return pairs, nil
}

func enrichStocks(stocks optimizer.Stocks, added map[string]int) {
	for name := range added {
		if _, ok := stocks[name]; !ok {
			stocks[name] = 0
		}
	}
}
