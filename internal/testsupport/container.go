package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// SampleReportXML declares one message with an image attachment, one
// contact, and one call.
const SampleReportXML = `<?xml version="1.0" encoding="UTF-8"?>
<report xmlns="urn:vendor:extraction">
  <messages>
    <message id="m1">
      <timestamp>1694505300000</timestamp>
      <sender>+919812345678</sender>
      <recipient>+447700900000</recipient>
      <body>Payment to 0xAbC1234567890aBcDeF1234567890AbCdEf12345 successful</body>
      <attachment>media/IMG_001.jpg</attachment>
    </message>
  </messages>
  <contacts>
    <contact>
      <name>Ravi</name>
      <phone>+919812345678</phone>
    </contact>
  </contacts>
  <calls>
    <call>
      <timestamp>1694505400</timestamp>
      <caller>+919812345678</caller>
      <callee>+447700900000</callee>
      <duration>120</duration>
    </call>
  </calls>
</report>
`

// SampleImage stands in for a JPEG attachment.
var SampleImage = []byte("\xff\xd8\xff\xe0fake-jpeg-payload")

// Container builds synthetic extraction containers.
type Container struct {
	order []string
	files map[string][]byte
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{files: make(map[string][]byte)}
}

// SampleContainer returns the report from SampleReportXML plus its image.
func SampleContainer() *Container {
	return NewContainer().
		Add("report.xml", []byte(SampleReportXML)).
		Add("media/IMG_001.jpg", SampleImage)
}

// Add stores a file at a slash-separated relative path.
func (c *Container) Add(rel string, data []byte) *Container {
	if _, ok := c.files[rel]; !ok {
		c.order = append(c.order, rel)
	}
	c.files[rel] = data
	return c
}

// WriteDir writes the container as an unpacked directory under dir.
func (c *Container) WriteDir(t testing.TB, dir string) string {
	t.Helper()
	for _, rel := range c.order {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, c.files[rel], 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

// WriteZip writes the container as a zip archive at path.
func (c *Container) WriteZip(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)
	for _, rel := range c.order {
		w, err := zw.Create(rel)
		if err != nil {
			t.Fatalf("zip entry %s: %v", rel, err)
		}
		if _, err := w.Write(c.files[rel]); err != nil {
			t.Fatalf("zip write %s: %v", rel, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}
