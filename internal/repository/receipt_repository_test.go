package repository

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Repository Suite")
}

var _ = Describe("buildSearchQuery", func() {
	When("only a text query is given", func() {
		It("ORs the match across text columns", func() {
			sql, args, err := buildSearchQuery("coffee", "", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("vendor ILIKE $1"))
			Expect(sql).To(ContainSubstring("category ILIKE $2"))
			Expect(sql).To(ContainSubstring("ocr_text ILIKE $3"))
			Expect(sql).To(ContainSubstring("items_json ILIKE $4"))
			Expect(sql).To(ContainSubstring("OR"))
			Expect(sql).To(ContainSubstring("ORDER BY id DESC"))
			Expect(sql).To(ContainSubstring("LIMIT 20"))
			Expect(args).To(HaveLen(4))
			Expect(args[0]).To(Equal("%coffee%"))
		})
	})

	When("only an item keyword is given", func() {
		It("restricts the match to the items column", func() {
			sql, args, err := buildSearchQuery("", "吹风机", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("items_json ILIKE $1"))
			Expect(sql).NotTo(ContainSubstring("vendor ILIKE"))
			Expect(args).To(Equal([]interface{}{"%吹风机%"}))
		})
	})

	When("both are given", func() {
		It("requires the item match on top of the text match", func() {
			sql, args, err := buildSearchQuery("store", "dryer", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("AND items_json ILIKE $5"))
			Expect(args).To(HaveLen(5))
			Expect(args[4]).To(Equal("%dryer%"))
		})
	})

	When("neither is given", func() {
		It("selects everything, newest first", func() {
			sql, args, err := buildSearchQuery("", "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).NotTo(ContainSubstring("WHERE"))
			Expect(sql).To(ContainSubstring("ORDER BY id DESC"))
			Expect(args).To(BeEmpty())
		})
	})
})

var _ = Describe("buildListQuery", func() {
	When("a month is given", func() {
		It("prefix-matches the receipt date", func() {
			sql, args, err := buildListQuery("2026-02", "", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("receipt_date LIKE $1"))
			Expect(args).To(Equal([]interface{}{"2026-02-%"}))
		})
	})

	When("a category is given", func() {
		It("compares case-insensitively", func() {
			sql, args, err := buildListQuery("", "Grocery", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("LOWER(category) = LOWER($1)"))
			Expect(args).To(Equal([]interface{}{"Grocery"}))
		})
	})

	When("both filters are given", func() {
		It("ANDs them and orders by date then id", func() {
			sql, args, err := buildListQuery("2026-01", "dining", 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(ContainSubstring("receipt_date LIKE $1"))
			Expect(sql).To(ContainSubstring("LOWER(category) = LOWER($2)"))
			Expect(sql).To(ContainSubstring("ORDER BY receipt_date DESC, id DESC"))
			Expect(sql).To(ContainSubstring("LIMIT 7"))
			Expect(args).To(HaveLen(2))
		})
	})
})
