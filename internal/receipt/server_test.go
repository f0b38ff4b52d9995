package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		store       *mockStorage
		engine      *mockEngine
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		store = newMockStorage()
		engine = newMockEngine()
		service = NewServiceWithDeps(db, engine, store,
			&fixedIDGenerator{id: "receipt-1"},
			&fixedTimeSource{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		)
		auth = BasicAuth{}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	uploadReceipt := func(filename string, data []byte) *http.Response {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghttpServer.URL()+"/api/receipts", writer.FormDataContentType(), &body)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("handleRoot", func() {
		It("should return the service banner", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var banner map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&banner)).To(Succeed())
			Expect(banner["service"]).To(Equal("receiptscan"))
		})
	})

	Describe("handleHealth", func() {
		It("should report ok", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var status map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&status)).To(Succeed())
			Expect(status["status"]).To(Equal("ok"))
		})
	})

	Describe("handleUploadReceipt", func() {
		When("the upload succeeds", func() {
			var resp *http.Response

			JustBeforeEach(func() {
				resp = uploadReceipt("photo.jpg", []byte("image-bytes"))
			})

			AfterEach(func() {
				resp.Body.Close()
			})

			It("should return status Created", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			})

			It("should return the receipt with extracted fields", func() {
				var receipt Receipt
				Expect(json.NewDecoder(resp.Body).Decode(&receipt)).To(Succeed())
				Expect(receipt.ID).To(Equal("receipt-1"))
				Expect(receipt.Amount).To(HaveValue(Equal(450)))
				Expect(receipt.Merchant).To(HaveValue(Equal("Coffee Shop")))
				Expect(receipt.RawText).To(ContainSubstring("Total: $4.50"))
			})
		})

		When("recognition fails", func() {
			BeforeEach(func() {
				engine.err = errors.New("ocr backend down")
			})

			It("should return status Bad Request with a JSON error", func() {
				resp := uploadReceipt("photo.jpg", []byte("image-bytes"))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var body map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
				Expect(body["error"]).To(ContainSubstring("recognizing receipt"))
			})
		})

		When("no file is attached", func() {
			It("should return status Bad Request", func() {
				var body bytes.Buffer
				writer := multipart.NewWriter(&body)
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/receipts", writer.FormDataContentType(), &body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleExtract", func() {
		postExtract := func(body string) *http.Response {
			resp, err := http.Post(ghttpServer.URL()+"/api/extract", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("the text contains all fields", func() {
			It("should return the structured fields", func() {
				resp := postExtract(`{"text": "RECEIPT\nCoffee Shop\nTotal: $4.50\nDate: 01/02/2024"}`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var fields extractResponse
				Expect(json.NewDecoder(resp.Body).Decode(&fields)).To(Succeed())
				Expect(fields.Amount).To(HaveValue(Equal(4.50)))
				Expect(fields.Date).To(HaveValue(Equal("2024-01-02")))
				Expect(fields.Merchant).To(HaveValue(Equal("Coffee Shop")))
			})
		})

		When("the text contains no fields", func() {
			It("should return nulls, not an error", func() {
				resp := postExtract(`{"text": ""}`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(MatchJSON(`{"amount": null, "date": null, "merchant": null}`))
			})
		})

		When("the body is not valid JSON", func() {
			It("should return status Bad Request", func() {
				resp := postExtract(`not json at all`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the text field is not a string", func() {
			It("should return status Bad Request", func() {
				resp := postExtract(`{"text": 42}`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the text field is missing", func() {
			It("should return status Bad Request", func() {
				resp := postExtract(`{}`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleGetReceipt", func() {
		When("the receipt exists", func() {
			BeforeEach(func() {
				_, err := service.ProcessReceipt("photo.jpg", []byte("image-bytes"), "image/jpeg")
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the receipt", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/receipt-1")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var receipt Receipt
				Expect(json.NewDecoder(resp.Body).Decode(&receipt)).To(Succeed())
				Expect(receipt.ID).To(Equal("receipt-1"))
			})
		})

		When("the receipt does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleGetReceiptFile", func() {
		BeforeEach(func() {
			_, err := service.ProcessReceipt("photo.jpg", []byte("image-bytes"), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the original bytes with the stored content type", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/receipts/receipt-1/file")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/jpeg"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(Equal([]byte("image-bytes")))
		})
	})

	Describe("handleDeleteReceipt", func() {
		BeforeEach(func() {
			_, err := service.ProcessReceipt("photo.jpg", []byte("image-bytes"), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return status No Content and remove the receipt", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/receipt-1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.receipts).To(BeEmpty())
		})
	})

	Describe("handleListReceipts", func() {
		When("no receipts exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
			})
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "secret"}
			server = NewServerWithMux(service, auth, http.NewServeMux())
			setupServer()
		})

		When("no credentials are provided", func() {
			It("should return status Unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("valid credentials are provided", func() {
			It("should serve the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
				Expect(err).NotTo(HaveOccurred())
				creds := base64.StdEncoding.EncodeToString([]byte("user:secret"))
				req.Header.Set("Authorization", "Basic "+creds)

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})

		When("the health probe is hit without credentials", func() {
			It("should still respond", func() {
				resp, err := http.Get(ghttpServer.URL() + "/health")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})
})
