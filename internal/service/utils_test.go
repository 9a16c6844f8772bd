package service

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SanitizeField", func() {
	var (
		input  string
		result string
	)

	JustBeforeEach(func() {
		result = SanitizeField(input)
	})

	When("the input is clean", func() {
		BeforeEach(func() {
			input = "Whole Foods Market"
		})

		It("passes through unchanged", func() {
			Expect(result).To(Equal("Whole Foods Market"))
		})
	})

	When("the input carries shell metacharacters", func() {
		BeforeEach(func() {
			input = "ACME; rm $(HOME) | cat"
		})

		It("strips them", func() {
			Expect(result).To(Equal("ACME rm HOME  cat"))
		})
	})

	When("the input is only whitespace", func() {
		BeforeEach(func() {
			input = "  \t "
		})

		It("collapses to empty", func() {
			Expect(result).To(BeEmpty())
		})
	})

	When("the input exceeds the field cap", func() {
		BeforeEach(func() {
			input = strings.Repeat("a", 600)
		})

		It("truncates to the cap", func() {
			Expect(result).To(HaveLen(512))
		})
	})

	When("the input contains invalid UTF-8", func() {
		BeforeEach(func() {
			input = "caf\xffe"
		})

		It("drops the bad bytes and keeps the rest", func() {
			Expect(result).To(Equal("cafe"))
		})
	})

	When("the input is CJK text", func() {
		BeforeEach(func() {
			input = "全食超市"
		})

		It("keeps multibyte runes intact", func() {
			Expect(result).To(Equal("全食超市"))
		})
	})
})
