package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func touch(path string) {
	Expect(os.WriteFile(path, []byte("x"), 0644)).To(Succeed())
}

var _ = Describe("Renamer", func() {
	var (
		tmpDir  string
		renamer Renamer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("ResolveConflict", func() {
		When("the candidate name is free", func() {
			It("returns it unchanged", func() {
				name, err := renamer.ResolveConflict(tmpDir, "receipt.pdf")
				Expect(err).NotTo(HaveOccurred())
				Expect(name).To(Equal("receipt.pdf"))
			})
		})

		When("the candidate name is taken", func() {
			BeforeEach(func() {
				touch(filepath.Join(tmpDir, "receipt.pdf"))
			})

			It("appends the first free suffix", func() {
				name, err := renamer.ResolveConflict(tmpDir, "receipt.pdf")
				Expect(err).NotTo(HaveOccurred())
				Expect(name).To(Equal("receipt_1.pdf"))
			})
		})

		When("several suffixed names are also taken", func() {
			BeforeEach(func() {
				touch(filepath.Join(tmpDir, "receipt.pdf"))
				touch(filepath.Join(tmpDir, "receipt_1.pdf"))
				touch(filepath.Join(tmpDir, "receipt_2.pdf"))
			})

			It("keeps probing until a free name is found", func() {
				name, err := renamer.ResolveConflict(tmpDir, "receipt.pdf")
				Expect(err).NotTo(HaveOccurred())
				Expect(name).To(Equal("receipt_3.pdf"))
			})
		})

		When("every probe within the bound is taken", func() {
			BeforeEach(func() {
				touch(filepath.Join(tmpDir, "receipt.pdf"))
				for n := 1; n <= maxConflictAttempts; n++ {
					touch(filepath.Join(tmpDir, fmt.Sprintf("receipt_%d.pdf", n)))
				}
			})

			It("returns ErrConflictUnresolved", func() {
				_, err := renamer.ResolveConflict(tmpDir, "receipt.pdf")
				Expect(err).To(MatchError(ErrConflictUnresolved))
			})
		})
	})

	Describe("Rename", func() {
		var source string

		BeforeEach(func() {
			source = filepath.Join(tmpDir, "original.pdf")
			touch(source)
		})

		When("the new name is clean", func() {
			It("renames the file in place", func() {
				newPath, err := renamer.Rename(source, "renamed.pdf", false)
				Expect(err).NotTo(HaveOccurred())
				Expect(newPath).To(Equal(filepath.Join(tmpDir, "renamed.pdf")))
				Expect(newPath).To(BeAnExistingFile())
				Expect(source).NotTo(BeAnExistingFile())
			})
		})

		When("running in dry-run mode", func() {
			It("reports the destination without touching the filesystem", func() {
				newPath, err := renamer.Rename(source, "renamed.pdf", true)
				Expect(err).NotTo(HaveOccurred())
				Expect(newPath).To(Equal(filepath.Join(tmpDir, "renamed.pdf")))
				Expect(source).To(BeAnExistingFile())
				Expect(newPath).NotTo(BeAnExistingFile())
			})
		})

		When("the new name tries to escape the directory", func() {
			It("rejects a parent-relative name", func() {
				_, err := renamer.Rename(source, "../escape.pdf", false)
				Expect(err).To(MatchError(ErrPathTraversal))
				Expect(source).To(BeAnExistingFile())
			})

			It("rejects a nested traversal", func() {
				_, err := renamer.Rename(source, "sub/../../escape.pdf", false)
				Expect(err).To(MatchError(ErrPathTraversal))
			})

			It("rejects it even in dry-run mode", func() {
				_, err := renamer.Rename(source, "../escape.pdf", true)
				Expect(err).To(MatchError(ErrPathTraversal))
			})
		})

		When("the new name points into a subdirectory", func() {
			It("rejects it", func() {
				_, err := renamer.Rename(source, "sub/renamed.pdf", false)
				Expect(err).To(MatchError(ErrPathTraversal))
			})
		})
	})
})
