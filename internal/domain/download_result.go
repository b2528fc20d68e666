package domain

// DownloadResult represents the result of a resource download
type DownloadResult struct {
	// Path is the local path where the resource was saved
	Path string

	// FileName is the sanitized name, extension included
	FileName string

	// BytesWritten is the total bytes written to disk
	BytesWritten int64
}
