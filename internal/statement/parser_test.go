package statement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseExtraction", func() {
	var (
		key     PageKey
		text    string
		records []TransactionRecord
	)

	BeforeEach(func() {
		key = PageKey{DocumentID: "2025-01-15", PageNumber: 1}
	})

	JustBeforeEach(func() {
		records = ParseExtraction(key, text)
	})

	When("parsing well-formed transaction lines", func() {
		BeforeEach(func() {
			text = "07/01/25|07/01/25|Payment-KTB Internet|-8,851.33\n18/12/24|20/12/24|SHOPEE BANGKOK TH|199.00"
		})

		It("should produce one record per line", func() {
			Expect(records).To(HaveLen(2))
		})

		It("should preserve source line order", func() {
			Expect(records[0].Description).To(Equal("Payment-KTB Internet"))
			Expect(records[1].Description).To(Equal("SHOPEE BANGKOK TH"))
		})

		It("should tag each record with the page key", func() {
			Expect(records[0].Page).To(Equal(key))
			Expect(records[1].Page).To(Equal(key))
		})

		It("should strip thousands separators from amounts", func() {
			Expect(records[0].Amount.StringFixed(2)).To(Equal("-8851.33"))
			Expect(records[1].Amount.StringFixed(2)).To(Equal("199.00"))
		})
	})

	When("the page reports no transactions", func() {
		BeforeEach(func() {
			text = "NO_TRANSACTIONS"
		})

		It("should produce zero records", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("the sentinel arrives with odd casing and whitespace", func() {
		BeforeEach(func() {
			text = "  no_transactions  "
		})

		It("should produce zero records", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should produce zero records", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("the model mixes prose with transaction lines", func() {
		BeforeEach(func() {
			text = "Here are the transactions I found:\n18/12/24|20/12/24|SHOPEE BANGKOK TH|199.00\nThat is all."
		})

		It("should keep only the structural lines", func() {
			Expect(records).To(HaveLen(1))
			Expect(records[0].Description).To(Equal("SHOPEE BANGKOK TH"))
		})
	})

	When("a line has a malformed date", func() {
		BeforeEach(func() {
			text = "not a date|x|y|z"
		})

		It("should discard the line without error", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("a line has a malformed posting date", func() {
		BeforeEach(func() {
			text = "18/12/24|yesterday|SHOPEE BANGKOK TH|199.00"
		})

		It("should discard the line", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("a line has the wrong number of fields", func() {
		BeforeEach(func() {
			text = "18/12/24|20/12/24|SHOPEE BANGKOK TH"
		})

		It("should discard the line", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("the amount does not parse as a decimal", func() {
		BeforeEach(func() {
			text = "18/12/24|20/12/24|SHOPEE BANGKOK TH|abc"
		})

		It("should discard the line", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("the description is empty after trimming", func() {
		BeforeEach(func() {
			text = "18/12/24|20/12/24|   |199.00"
		})

		It("should discard the line", func() {
			Expect(records).To(BeEmpty())
		})
	})

	When("fields carry surrounding whitespace", func() {
		BeforeEach(func() {
			text = " 18/12/24 | 20/12/24 |  SHOPEE BANGKOK TH  | 199.00 "
		})

		It("should trim all four fields", func() {
			Expect(records).To(HaveLen(1))
			Expect(records[0].TransactionDate).To(Equal("18/12/24"))
			Expect(records[0].PostingDate).To(Equal("20/12/24"))
			Expect(records[0].Description).To(Equal("SHOPEE BANGKOK TH"))
			Expect(records[0].Amount.StringFixed(2)).To(Equal("199.00"))
		})
	})

	When("parsing the same text twice", func() {
		BeforeEach(func() {
			text = "07/01/25|07/01/25|Payment-KTB Internet|-8,851.33\n18/12/24|20/12/24|SHOPEE BANGKOK TH|199.00"
		})

		It("should yield identical record sequences", func() {
			Expect(ParseExtraction(key, text)).To(Equal(records))
		})
	})
})
