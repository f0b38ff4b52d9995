package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testReceipt(id string, createdAt time.Time) *Receipt {
	merchant := "Coffee Shop"
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	amount := 450
	return &Receipt{
		ID:          id,
		Merchant:    &merchant,
		Date:        &date,
		Amount:      &amount,
		RawText:     "Coffee Shop\nTotal: $4.50\nDate: 01/02/2024",
		Filename:    id + "_photo.jpg",
		ContentType: "image/jpeg",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveReceipt and GetReceipt", func() {
		It("should round-trip a receipt with all fields present", func() {
			saved := testReceipt("test-id", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
			Expect(db.SaveReceipt(saved)).To(Succeed())

			got, err := db.GetReceipt("test-id")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("test-id"))
			Expect(got.Merchant).To(HaveValue(Equal("Coffee Shop")))
			Expect(got.Amount).To(HaveValue(Equal(450)))
			Expect(got.Date).To(HaveValue(Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))))
			Expect(got.RawText).To(Equal(saved.RawText))
		})

		It("should round-trip a receipt with absent fields", func() {
			receipt := &Receipt{
				ID:          "sparse-id",
				RawText:     "nothing recognizable",
				Filename:    "sparse.jpg",
				ContentType: "image/jpeg",
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			Expect(db.SaveReceipt(receipt)).To(Succeed())

			got, err := db.GetReceipt("sparse-id")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Merchant).To(BeNil())
			Expect(got.Date).To(BeNil())
			Expect(got.Amount).To(BeNil())
		})

		It("should return an error for an unknown ID", func() {
			_, err := db.GetReceipt("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListReceipts", func() {
		It("should return receipts newest first", func() {
			base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			Expect(db.SaveReceipt(testReceipt("old", base))).To(Succeed())
			Expect(db.SaveReceipt(testReceipt("newest", base.Add(2*time.Hour)))).To(Succeed())
			Expect(db.SaveReceipt(testReceipt("middle", base.Add(time.Hour)))).To(Succeed())

			receipts, err := db.ListReceipts()
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(HaveLen(3))
			Expect(receipts[0].ID).To(Equal("newest"))
			Expect(receipts[1].ID).To(Equal("middle"))
			Expect(receipts[2].ID).To(Equal("old"))
		})

		It("should return an empty slice when no receipts exist", func() {
			receipts, err := db.ListReceipts()
			Expect(err).NotTo(HaveOccurred())
			Expect(receipts).To(BeEmpty())
			Expect(receipts).NotTo(BeNil())
		})
	})

	Describe("DeleteReceipt", func() {
		It("should remove the receipt", func() {
			Expect(db.SaveReceipt(testReceipt("test-id", time.Now()))).To(Succeed())
			Expect(db.DeleteReceipt("test-id")).To(Succeed())

			_, err := db.GetReceipt("test-id")
			Expect(err).To(HaveOccurred())
		})
	})
})
