package imagebuilder

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"time"
)

// tarFileMode is the fixed mode for files in the build context archive.
const tarFileMode = 0o644

// contextFile maps a host file into the build context under a canonical name.
type contextFile struct {
	Name string
	Path string
}

// writeBuildContext streams a tar archive with the Dockerfile and the scoring
// inputs to the writer. Entries carry fixed modes and zero timestamps so the
// context is deterministic for identical inputs.
func writeBuildContext(writer io.Writer, dockerfile []byte, files []contextFile) error {
	tarWriter := tar.NewWriter(writer)

	err := writeContextEntry(tarWriter, dockerfileName, dockerfile)
	if err != nil {
		return err
	}

	for _, file := range files {
		err = writeContextFile(tarWriter, file)
		if err != nil {
			return err
		}
	}

	err = tarWriter.Close()
	if err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}

	return nil
}

// writeContextEntry writes in-memory content under the given name.
func writeContextEntry(tarWriter *tar.Writer, name string, content []byte) error {
	header := &tar.Header{
		Name:    name,
		Mode:    tarFileMode,
		Size:    int64(len(content)),
		ModTime: time.Time{},
	}

	err := tarWriter.WriteHeader(header)
	if err != nil {
		return fmt.Errorf("write tar header for %s: %w", name, err)
	}

	_, err = tarWriter.Write(content)
	if err != nil {
		return fmt.Errorf("write content for %s: %w", name, err)
	}

	return nil
}

// writeContextFile streams a host file into the archive under its canonical
// name. Model files can be large, so content is copied rather than read whole.
func writeContextFile(tarWriter *tar.Writer, file contextFile) error {
	info, err := os.Stat(file.Path)
	if err != nil {
		return fmt.Errorf("stat file %s: %w", file.Path, err)
	}

	header := &tar.Header{
		Name:    file.Name,
		Mode:    tarFileMode,
		Size:    info.Size(),
		ModTime: time.Time{},
	}

	err = tarWriter.WriteHeader(header)
	if err != nil {
		return fmt.Errorf("write tar header for %s: %w", file.Name, err)
	}

	// #nosec G304 -- path validated by the build options
	source, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open file %s: %w", file.Path, err)
	}

	defer func() { _ = source.Close() }()

	_, err = io.Copy(tarWriter, source)
	if err != nil {
		return fmt.Errorf("write file %s to tar: %w", file.Path, err)
	}

	return nil
}
