package certificate

import (
	"strings"

	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/style"
)

const width = 64

func lines(cert Certificate, bold func(string) string) string {
	return strings.Join([]string{
		"CERTIFICATE OF COMPLETION",
		"",
		"This certifies that",
		bold(cert.LearnerName),
		"has successfully completed",
		bold(cert.CourseTitle),
		"",
		"Issued " + cert.IssuedAt.Format("January 2, 2006"),
		"No. " + cert.Number,
	}, "\n")
}

// Render draws the certificate for the terminal.
func Render(cert Certificate) string {
	return style.Frame(style.New(), width).Render(lines(cert, style.Bold))
}

// Text is the colorless rendition used for exported files.
func Text(cert Certificate) string {
	return style.Frame(style.Plain(), width).Render(lines(cert, strings.ToUpper)) + "\n"
}

// Export writes the certificate as <number>.txt into dir and returns the file path.
func Export(cert Certificate, dir string) (string, error) {
	if err := filesystem.API().MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := ExportPath(cert, dir)
	if err := filesystem.WriteFileAtomic(path, []byte(Text(cert))); err != nil {
		return "", err
	}
	return path, nil
}
