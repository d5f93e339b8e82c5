package utils

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type Config struct {
	GeneList  string
	CPU       int
	CovCutoff int
	Kvals     []string
	Unpaired  bool
}

func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	cfg := Config{CovCutoff: 8}

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "genelist":
			cfg.GeneList = value
		case "cpu":
			cpu, cErr := strconv.Atoi(value)
			if cErr == nil {
				cfg.CPU = cpu
			}
		case "cov_cutoff":
			cov, cErr := strconv.Atoi(value)
			if cErr == nil {
				cfg.CovCutoff = cov
			}
		case "kvals":
			cfg.Kvals = strings.Fields(value)
		case "unpaired":
			cfg.Unpaired = value == "true" || value == "yes" || value == "1"
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil

}

// CheckDeps verifies the external tools. SPAdes is required; GNU parallel is
// optional because the built-in worker pool can stand in for it.
func CheckDeps() error {
	if _, err := exec.LookPath("spades.py"); err != nil {
		return fmt.Errorf("spades.py not found on PATH: %w", err)
	}
	return nil
}

func RunBashCmdVerbose(cmdStr string) error {
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return err
	}
	return nil
}

// ReadLines returns the non-empty, whitespace-trimmed lines of a file.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func WriteLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}
