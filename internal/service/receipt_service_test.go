package service

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("normalizeMonth", func() {
	var (
		input  string
		result string
		err    error
	)

	JustBeforeEach(func() {
		result, err = normalizeMonth(input)
	})

	When("given a full YYYY-MM month", func() {
		BeforeEach(func() {
			input = "2026-02"
		})

		It("returns it unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("2026-02"))
		})
	})

	When("given a bare single-digit month", func() {
		BeforeEach(func() {
			input = "2"
		})

		It("pads it within the current year", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(fmt.Sprintf("%d-02", time.Now().Year())))
		})
	})

	When("given a bare two-digit month", func() {
		BeforeEach(func() {
			input = "11"
		})

		It("keeps both digits within the current year", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(fmt.Sprintf("%d-11", time.Now().Year())))
		})
	})

	When("given something else entirely", func() {
		BeforeEach(func() {
			input = "February"
		})

		It("rejects the value", func() {
			Expect(err).To(MatchError(ErrInvalid))
		})
	})
})
