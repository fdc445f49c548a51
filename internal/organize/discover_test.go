package organize

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Discover", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	When("the directory holds a mix of files", func() {
		BeforeEach(func() {
			writeFile(tmpDir, "b.pdf")
			writeFile(tmpDir, "a.jpg")
			writeFile(tmpDir, "notes.txt")
			writeFile(tmpDir, "script.sh")
		})

		It("returns only supported files, sorted", func() {
			files, err := Discover(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(Equal([]string{
				filepath.Join(tmpDir, "a.jpg"),
				filepath.Join(tmpDir, "b.pdf"),
			}))
		})
	})

	When("extensions are upper-case", func() {
		BeforeEach(func() {
			writeFile(tmpDir, "SCAN.PDF")
			writeFile(tmpDir, "photo.JPEG")
		})

		It("matches case-insensitively", func() {
			files, err := Discover(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(2))
		})
	})

	When("files live in nested directories", func() {
		BeforeEach(func() {
			sub := filepath.Join(tmpDir, "2024", "january")
			Expect(os.MkdirAll(sub, 0755)).To(Succeed())
			writeFile(sub, "deep.tiff")
			writeFile(tmpDir, "top.png")
		})

		It("recurses into them", func() {
			files, err := Discover(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(ConsistOf(
				filepath.Join(tmpDir, "2024", "january", "deep.tiff"),
				filepath.Join(tmpDir, "top.png"),
			))
		})
	})

	When("the root does not exist", func() {
		It("returns an error", func() {
			_, err := Discover(filepath.Join(tmpDir, "missing"))
			Expect(err).To(HaveOccurred())
		})
	})
})
