package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

// maxTokenSize bounds a single whitespace-delimited token read from an
// input file.
const maxTokenSize = 1 << 20

// scanBufferSize is the initial scanner buffer size.
const scanBufferSize = 64 * 1024

// internFiles interns every whitespace-delimited token from the given
// files and reports the total token count (duplicates included).
func internFiles(rodeo *intern.Rodeo, paths []string) (int, error) {
	total := 0

	for _, path := range paths {
		count, err := internFile(rodeo, path)
		if err != nil {
			return total, err
		}

		total += count
	}

	return total, nil
}

func internFile(rodeo *intern.Rodeo, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, scanBufferSize), maxTokenSize)
	scanner.Split(bufio.ScanWords)

	count := 0

	for scanner.Scan() {
		_, internErr := rodeo.GetOrInternBytes(scanner.Bytes())
		if internErr != nil {
			return count, fmt.Errorf("intern %q: %w", scanner.Text(), internErr)
		}

		count++
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return count, fmt.Errorf("scan input: %w", scanErr)
	}

	return count, nil
}

// internerOptions converts flag-level sizing values into interner options.
// Zero values fall through to the built-in defaults.
func internerOptions(memoryLimit int, maxKeys, capacity int) []intern.Option {
	var opts []intern.Option

	if memoryLimit > 0 {
		opts = append(opts, intern.WithMemoryLimit(memoryLimit))
	}

	if maxKeys > 0 {
		opts = append(opts, intern.WithMaxKeys(safeconv.MustIntToUint32(maxKeys)))
	}

	if capacity > 0 {
		opts = append(opts, intern.WithCapacity(capacity))
	}

	return opts
}
