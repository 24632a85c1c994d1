package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("prepareImageData", func() {
	var (
		input       []byte
		contentType string
		output      []byte
		err         error
	)

	JustBeforeEach(func() {
		output, err = prepareImageData(input, contentType)
	})

	When("the upload is a PNG", func() {
		BeforeEach(func() {
			input = pngBytes()
			contentType = "image/png"
		})

		It("should return the data unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(Equal(input))
		})
	})

	When("the upload is labelled as JPEG", func() {
		BeforeEach(func() {
			input = []byte("jpeg bytes")
			contentType = " IMAGE/JPEG "
		})

		It("should return the data unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(Equal(input))
		})
	})

	When("the upload is a TIFF", func() {
		BeforeEach(func() {
			input = []byte("II*\x00tiff bytes")
			contentType = "image/tiff"
		})

		It("should return the data unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(Equal(input))
		})
	})

	When("the upload is a GIF", func() {
		BeforeEach(func() {
			img := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
			var buf bytes.Buffer
			Expect(gif.Encode(&buf, img, nil)).To(Succeed())
			input = buf.Bytes()
			contentType = "image/gif"
		})

		It("should convert it to PNG", func() {
			Expect(err).NotTo(HaveOccurred())
			_, decodeErr := png.Decode(bytes.NewReader(output))
			Expect(decodeErr).NotTo(HaveOccurred())
		})
	})

	When("the upload is not a decodable image", func() {
		BeforeEach(func() {
			input = []byte("plain text")
			contentType = "text/plain"
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported image format"))
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("should detect the heic brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("should reject short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})

	It("should reject other brands", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypisom0000")...)
		Expect(isHEICFormat(data)).To(BeFalse())
	})
})

var _ = Describe("joinLines", func() {
	It("should trim and join in order", func() {
		Expect(joinLines([]string{" b ", "a"})).To(Equal("b\na"))
	})

	It("should return an empty string for no lines", func() {
		Expect(joinLines(nil)).To(BeEmpty())
	})
})
