package service

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"receipt-vault/internal/models"
)

func TestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Service Suite")
}

var _ = Describe("ExtractService", func() {
	var svc *ExtractService

	BeforeEach(func() {
		svc = NewExtractService(zap.NewNop())
	})

	Describe("Date", func() {
		var (
			text   string
			result *string
		)

		JustBeforeEach(func() {
			result = svc.Date(text)
		})

		When("the text contains an ISO date", func() {
			BeforeEach(func() {
				text = "Receipt issued 2026-02-26 at store #12"
			})

			It("returns the date unchanged", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("2026-02-26"))
			})
		})

		When("the text contains a slash date", func() {
			BeforeEach(func() {
				text = "Visit date: 02/26/2026"
			})

			It("normalizes month/day/year to ISO", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("2026-02-26"))
			})
		})

		When("both formats appear", func() {
			BeforeEach(func() {
				text = "printed 03/01/2026\norder date 2026-02-26"
			})

			It("prefers the ISO form", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("2026-02-26"))
			})
		})

		When("the only candidate is not a real calendar date", func() {
			BeforeEach(func() {
				text = "expires 2026-13-40"
			})

			It("returns nil", func() {
				Expect(result).To(BeNil())
			})
		})

		When("the text has no date at all", func() {
			BeforeEach(func() {
				text = "no digits here"
			})

			It("returns nil", func() {
				Expect(result).To(BeNil())
			})
		})
	})

	Describe("TotalAndCurrency", func() {
		var (
			text     string
			total    *float64
			currency *string
		)

		JustBeforeEach(func() {
			total, currency = svc.TotalAndCurrency(text)
		})

		When("a labeled dollar total is present", func() {
			BeforeEach(func() {
				text = "Items 2\nTotal: $12.34"
			})

			It("returns the amount and USD", func() {
				Expect(total).NotTo(BeNil())
				Expect(*total).To(Equal(12.34))
				Expect(currency).NotTo(BeNil())
				Expect(*currency).To(Equal("USD"))
			})
		})

		When("only a bare symbol amount is present", func() {
			BeforeEach(func() {
				text = "paid $5.00 cash"
			})

			It("returns the amount and USD", func() {
				Expect(total).NotTo(BeNil())
				Expect(*total).To(Equal(5.00))
				Expect(currency).NotTo(BeNil())
				Expect(*currency).To(Equal("USD"))
			})
		})

		When("the labeled total has no symbol and uses a comma decimal", func() {
			BeforeEach(func() {
				text = "Total: 12,34"
			})

			It("returns the amount without a currency", func() {
				Expect(total).NotTo(BeNil())
				Expect(*total).To(Equal(12.34))
				Expect(currency).To(BeNil())
			})
		})

		When("a labeled total and a bigger bare amount both appear", func() {
			BeforeEach(func() {
				text = "$99.99 gift card\nTotal: $12.34"
			})

			It("prefers the labeled total", func() {
				Expect(total).NotTo(BeNil())
				Expect(*total).To(Equal(12.34))
			})
		})

		When("a euro amount is present", func() {
			BeforeEach(func() {
				text = "Sum: €7,50"
			})

			It("maps the symbol to EUR", func() {
				Expect(total).NotTo(BeNil())
				Expect(*total).To(Equal(7.50))
				Expect(currency).NotTo(BeNil())
				Expect(*currency).To(Equal("EUR"))
			})
		})

		When("no amount is present", func() {
			BeforeEach(func() {
				text = "thanks for visiting"
			})

			It("returns nil for both", func() {
				Expect(total).To(BeNil())
				Expect(currency).To(BeNil())
			})
		})
	})

	Describe("Vendor", func() {
		var (
			text   string
			result *string
		)

		JustBeforeEach(func() {
			result = svc.Vendor(text)
		})

		When("the first line is a clean vendor name", func() {
			BeforeEach(func() {
				text = "Whole Foods Market\n2026-01-14\nTotal: $6.48"
			})

			It("picks the first line", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("Whole Foods Market"))
			})
		})

		When("boilerplate precedes the vendor", func() {
			BeforeEach(func() {
				text = "*** RECEIPT ***\nGolden Wok\n01/22/2026"
			})

			It("skips the boilerplate line", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("Golden Wok"))
			})
		})

		When("every header line is boilerplate", func() {
			BeforeEach(func() {
				text = "Official Tax Receipt Duplicate Invoice Notice Copy\nTotal: $1.00"
			})

			It("falls back to the truncated first line", func() {
				Expect(result).NotTo(BeNil())
				Expect(*result).To(Equal("Official Tax Receipt Duplicate Invoice Notice Co"))
			})
		})

		When("the text is empty", func() {
			BeforeEach(func() {
				text = "   \n\n  "
			})

			It("returns nil", func() {
				Expect(result).To(BeNil())
			})
		})
	})

	Describe("Category", func() {
		var (
			vendor *string
			text   string
			result models.Category
		)

		BeforeEach(func() {
			vendor = nil
			text = ""
		})

		JustBeforeEach(func() {
			result = svc.Category(vendor, text)
		})

		When("the vendor is a known grocery chain", func() {
			BeforeEach(func() {
				v := "Whole Foods Market"
				vendor = &v
			})

			It("classifies as grocery", func() {
				Expect(result).To(Equal(models.CategoryGrocery))
			})
		})

		When("the text mentions a restaurant", func() {
			BeforeEach(func() {
				text = "Thanks for dining at our restaurant"
			})

			It("classifies as dining", func() {
				Expect(result).To(Equal(models.CategoryDining))
			})
		})

		When("grocery and dining keywords both appear", func() {
			BeforeEach(func() {
				text = "market street restaurant"
			})

			It("uses rule order as the tie-break", func() {
				Expect(result).To(Equal(models.CategoryGrocery))
			})
		})

		When("nothing matches", func() {
			BeforeEach(func() {
				text = "xyzzy"
			})

			It("falls back to other", func() {
				Expect(result).To(Equal(models.CategoryOther))
			})
		})
	})

	Describe("Items", func() {
		var (
			text   string
			result []models.LineItem
		)

		JustBeforeEach(func() {
			result = svc.Items(text)
		})

		When("lines end with priced amounts", func() {
			BeforeEach(func() {
				text = "Bananas 1.99\nOat Milk $4.49\nTotal: $6.48"
			})

			It("extracts each purchase line in order", func() {
				Expect(result).To(HaveLen(2))
				Expect(result[0].Name).To(Equal("Bananas"))
				Expect(result[0].Price).To(Equal(1.99))
				Expect(result[0].Currency).To(BeNil())
				Expect(result[1].Name).To(Equal("Oat Milk"))
				Expect(result[1].Price).To(Equal(4.49))
				Expect(*result[1].Currency).To(Equal("USD"))
			})

			It("drops the summary row", func() {
				for _, it := range result {
					Expect(it.Name).NotTo(ContainSubstring("Total"))
				}
			})
		})

		When("a summary row uses subtotal or tax", func() {
			BeforeEach(func() {
				text = "Subtotal 10.00\nTax 1.30\nDumplings 8.00"
			})

			It("keeps only the purchase line", func() {
				Expect(result).To(HaveLen(1))
				Expect(result[0].Name).To(Equal("Dumplings"))
			})
		})

		When("a comma decimal is used", func() {
			BeforeEach(func() {
				text = "Brötchen €2,40"
			})

			It("normalizes the decimal separator", func() {
				Expect(result).To(HaveLen(1))
				Expect(result[0].Price).To(Equal(2.40))
				Expect(*result[0].Currency).To(Equal("EUR"))
			})
		})

		When("no line matches", func() {
			BeforeEach(func() {
				text = "thank you\ncome again"
			})

			It("returns an empty slice", func() {
				Expect(result).To(BeEmpty())
			})
		})
	})
})
