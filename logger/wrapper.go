package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"
)

// WrapProcess runs executable as a child, forwards its JSON log lines and
// turns a panic dump on its stderr into a single structured fatal entry.
// It never returns: the wrapper exits with the child's exit code.
func WrapProcess(executable string, arg ...string) {
	wrapperLogger := NewLogger("Logs wrapper")
	defer handlePanic(wrapperLogger)

	r, w, err := os.Pipe()
	if err != nil {
		wrapperLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
		os.Exit(1)
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stderr = w
	cmd.Stdout = os.Stdout
	cmd.Env = os.Environ()

	if err = cmd.Start(); err != nil {
		wrapperLogger.Fatal().Err(err).Msg("Could not launch prediction service")
		os.Exit(1)
	}
	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)

	go waitForCommandToExit(cmd, wrapperLogger, exitCodeCh)
	go collectLogs(r, wrapperLogger, logsCh)

	panicLogsBuilder := strings.Builder{}
	foundPanic := false
	for {
		select {
		case exitCode := <-exitCodeCh:
			handleExit(exitCode, panicLogsBuilder.String(), wrapperLogger)
		case logsLineBytes := <-logsCh:
			foundPanic = handleLogLine(logsLineBytes, foundPanic, &panicLogsBuilder, wrapperLogger)
		}
	}
}

func waitForCommandToExit(cmd *exec.Cmd, wrapperLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(wrapperLogger)
	err := cmd.Wait()
	if err == nil {
		exitCodeCh <- 0
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		exitCodeCh <- 1
		return
	}
	exitCodeCh <- exitErr.ExitCode()
}

func collectLogs(r *os.File, wrapperLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(wrapperLogger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		logsCh <- line
	}
	if err := scanner.Err(); err != nil {
		wrapperLogger.Fatal().Err(err).Msg("Error scanning stderr of the prediction service")
		os.Exit(1)
	}
}

func handleExit(exitCode int, panicLogs string, wrapperLogger zerolog.Logger) {
	if exitCode == 0 {
		wrapperLogger.Info().Msg("Exited with code 0")
	} else {
		wrapperLogger.
			Fatal().
			Err(errors.New(panicLogs)).
			Msgf("Panicked and exited with code: %d", exitCode)
	}
	os.Exit(exitCode)
}

func handleLogLine(logsLineBytes []byte, foundPanic bool, builder *strings.Builder, wrapperLogger zerolog.Logger) bool {
	logsLine := string(logsLineBytes)
	if !foundPanic && strings.HasPrefix(logsLine, "panic") {
		foundPanic = true
	}
	switch {
	case len(logsLineBytes) == 0:
		return foundPanic
	case foundPanic:
		builder.WriteString(fmt.Sprintf("%s\n", logsLine))
	case isJSON(logsLineBytes):
		fmt.Fprintln(os.Stderr, logsLine)
	default:
		wrapperLogger.Error().Msgf("Got log line that is not JSON formatted: '%s'", logsLine)
	}
	return foundPanic
}

func handlePanic(wrapperLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	wrapperLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}

func isJSON(b []byte) bool {
	var js json.RawMessage
	err := json.Unmarshal(b, &js)
	return err == nil && js != nil
}
