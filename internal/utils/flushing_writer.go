package utils

import (
	"io"
	"sync"
)

// FlushingWriter ensures data written to buffered writers becomes visible
// immediately by invoking Flush or Sync when the underlying writer supports it.
// Streamed step output depends on this so lines appear as they are produced.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer; already-wrapped writers are returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch flushableWriter := flushingWriter.writer.(type) {
	case interface{ Flush() error }:
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	case interface{ Sync() error }:
		if syncError := flushableWriter.Sync(); syncError != nil {
			return bytesWritten, syncError
		}
	}

	return bytesWritten, nil
}
