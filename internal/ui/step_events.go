package ui

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pipeworks/pipeshell/internal/execshell"
)

const (
	stepStartedMessageTemplateConstant          = "Starting step %s"
	stepCompletedMessageTemplateConstant        = "Step %s completed"
	stepFailedExitCodeMessageTemplateConstant   = "Step %s failed with exit code %d"
	stepExecutionFailureMessageTemplateConstant = "Step %s failed: %s"
	unknownFailureMessageConstant               = "unknown error"
	unnamedStepLabelConstant                    = "unnamed"
	sinkLineTemplateConstant                    = "%s\n"
	newlineCharacterConstant                    = "\n"
)

// ZapInformationSink adapts a zap logger to the execshell InformationSink capability.
type ZapInformationSink struct {
	logger *zap.Logger
}

// NewZapInformationSink constructs a sink backed by the provided zap logger.
func NewZapInformationSink(logger *zap.Logger) *ZapInformationSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapInformationSink{logger: logger}
}

// Info implements execshell.InformationSink.
func (sink *ZapInformationSink) Info(message string) {
	if sink == nil {
		return
	}
	sink.logger.Info(message)
}

// WriterInformationSink renders informational messages as newline-terminated
// lines on an arbitrary writer, typically the command standard output.
type WriterInformationSink struct {
	writer io.Writer
}

// NewWriterInformationSink constructs a sink writing to the provided writer.
func NewWriterInformationSink(writer io.Writer) *WriterInformationSink {
	return &WriterInformationSink{writer: writer}
}

// Info implements execshell.InformationSink.
func (sink *WriterInformationSink) Info(message string) {
	if sink == nil || sink.writer == nil {
		return
	}
	fmt.Fprintf(sink.writer, sinkLineTemplateConstant, strings.TrimRight(message, newlineCharacterConstant))
}

// StepEventFormatter builds human-readable messages for pipeline step lifecycle events.
type StepEventFormatter struct{}

// BuildStartedMessage formats the message describing a step about to run.
func (formatter StepEventFormatter) BuildStartedMessage(stepName string) string {
	return fmt.Sprintf(stepStartedMessageTemplateConstant, formatter.describeStep(stepName))
}

// BuildCompletedMessage formats the message describing a step that finished with a zero exit code.
func (formatter StepEventFormatter) BuildCompletedMessage(stepName string) string {
	return fmt.Sprintf(stepCompletedMessageTemplateConstant, formatter.describeStep(stepName))
}

// BuildFailedMessage formats the message describing a step that finished with a nonzero exit code.
func (formatter StepEventFormatter) BuildFailedMessage(stepName string, result execshell.ExecutionResult) string {
	return fmt.Sprintf(stepFailedExitCodeMessageTemplateConstant, formatter.describeStep(stepName), result.ExitCode)
}

// BuildExecutionFailureMessage formats the message describing a step whose command could not run.
func (formatter StepEventFormatter) BuildExecutionFailureMessage(stepName string, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(stepExecutionFailureMessageTemplateConstant, formatter.describeStep(stepName), failureMessage)
}

func (formatter StepEventFormatter) describeStep(stepName string) string {
	trimmedName := strings.TrimSpace(stepName)
	if len(trimmedName) == 0 {
		return unnamedStepLabelConstant
	}
	return trimmedName
}

// ConsoleStepEventLogger renders step lifecycle events using a zap logger.
type ConsoleStepEventLogger struct {
	logger    *zap.Logger
	formatter StepEventFormatter
}

// NewConsoleStepEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleStepEventLogger(logger *zap.Logger) *ConsoleStepEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStepEventLogger{logger: logger, formatter: StepEventFormatter{}}
}

// StepStarted implements pipeline.StepEventObserver by logging step start notifications.
func (eventLogger *ConsoleStepEventLogger) StepStarted(stepName string, command string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(stepName))
}

// StepCompleted implements pipeline.StepEventObserver by logging step completion notifications.
func (eventLogger *ConsoleStepEventLogger) StepCompleted(stepName string, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildCompletedMessage(stepName))
}

// StepFailed implements pipeline.StepEventObserver by logging nonzero exit notifications.
func (eventLogger *ConsoleStepEventLogger) StepFailed(stepName string, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailedMessage(stepName, result))
}

// StepExecutionFailed implements pipeline.StepEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleStepEventLogger) StepExecutionFailed(stepName string, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(stepName, failure))
}
