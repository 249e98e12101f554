package orekit

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _odconfig{}
)

// _odconfig is a "hidden" struct, just use `odConfig`
type _odconfig struct {
	LeapSecondFile string
	outputDir      string
}

// odConfig returns the orbit determination configuration.
func odConfig() _odconfig {
	if cfgLoaded {
		return config
	}
	// Load the configuration file
	confPath := os.Getenv("OD_CONFIG")
	if confPath == "" {
		panic("environment variable `OD_CONFIG` is missing or empty")
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}

	leapFile := viper.GetString("timescales.leapseconds")
	outputDir := viper.GetString("general.output_path")

	config = _odconfig{LeapSecondFile: leapFile, outputDir: outputDir}
	cfgLoaded = true
	return config
}

// loadLeapSeconds parses a leap second history file. Each data row holds three
// whitespace separated columns: the MJD of the day following the leap, the
// size of the leap in seconds, and the cumulative TAI-UTC offset applicable
// from that day on. Blank lines and lines starting with # are skipped.
//
//	# MJD   step   TAI-UTC
//	41499   1      12
//	...
//	57754   1      37
func loadLeapSeconds(filename string) ([]Leap, error) {
	if filename == "" {
		return nil, fmt.Errorf("no leap second file configured")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var leaps []Leap
	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0:1] == "#" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformatted leap second entry on line %d: `%s`", lineNo, line)
		}
		mjd, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MJD on line %d: %s", lineNo, err)
		}
		step, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid step on line %d: %s", lineNo, err)
		}
		total, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset on line %d: %s", lineNo, err)
		}
		// The internal convention carries UTC-TAI: an inserted second makes the
		// offset more negative, so both step and cumulative offset flip sign.
		leaps = append(leaps, Leap{UTCTime: MJD2000(mjd), Step: -step, OffsetAfter: -total})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(leaps) == 0 {
		return nil, fmt.Errorf("no leap second entries found in %s", filename)
	}
	return leaps, nil
}
