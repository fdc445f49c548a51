package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("isHEICFormat", func() {
	When("the data carries an ftyp box with a heic brand", func() {
		It("detects HEIC", func() {
			data := []byte{0, 0, 0, 24, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}
			Expect(isHEICFormat(data)).To(BeTrue())
		})
	})

	When("the data carries an ftyp box with a mif1 brand", func() {
		It("detects HEIF", func() {
			data := []byte{0, 0, 0, 24, 'f', 't', 'y', 'p', 'm', 'i', 'f', '1'}
			Expect(isHEICFormat(data)).To(BeTrue())
		})
	})

	When("the data is a PNG", func() {
		It("does not detect HEIC", func() {
			data := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
			Expect(isHEICFormat(data)).To(BeFalse())
		})
	})

	When("the data is too short", func() {
		It("does not detect HEIC", func() {
			Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
		})
	})
})

var _ = Describe("NewConverter", func() {
	When("the DPI is not positive", func() {
		It("falls back to the default", func() {
			Expect(NewConverter(0).dpi).To(Equal(400))
			Expect(NewConverter(-10).dpi).To(Equal(400))
		})
	})

	When("a DPI is given", func() {
		It("keeps it", func() {
			Expect(NewConverter(300).dpi).To(Equal(300))
		})
	})
})
