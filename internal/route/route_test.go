package route_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ollama-proxy/internal/registry"
	"github.com/angeloszaimis/ollama-proxy/internal/route"
)

func TestRoute(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Route Suite")
}

var _ = Describe("Resolve", func() {
	var reg *registry.Registry

	BeforeEach(func() {
		entries, _ := registry.Parse("a:localhost:11434,b:localhost:11435")
		reg = registry.New(entries)
	})

	Context("with a known instance prefix", func() {
		It("should strip the prefix and route to that instance", func() {
			res := route.Resolve(reg, "/a/api/tags")
			Expect(res.BaseURL).To(Equal("http://localhost:11434"))
			Expect(res.ForwardPath).To(Equal("api/tags"))
			Expect(res.Instance).To(Equal("a"))
		})

		It("should route to the second instance by name", func() {
			res := route.Resolve(reg, "/b/api/generate")
			Expect(res.BaseURL).To(Equal("http://localhost:11435"))
			Expect(res.ForwardPath).To(Equal("api/generate"))
			Expect(res.Instance).To(Equal("b"))
		})

		It("should forward an empty remainder", func() {
			res := route.Resolve(reg, "/a")
			Expect(res.BaseURL).To(Equal("http://localhost:11434"))
			Expect(res.ForwardPath).To(BeEmpty())
		})

		It("should route a health remainder to the instance, not locally", func() {
			res := route.Resolve(reg, "/a/health")
			Expect(res.Instance).To(Equal("a"))
			Expect(res.ForwardPath).To(Equal("health"))
		})
	})

	Context("without a known instance prefix", func() {
		It("should keep the first segment in the forward path", func() {
			res := route.Resolve(reg, "/unknown/api/tags")
			Expect(res.BaseURL).To(Equal("http://localhost:11434"))
			Expect(res.ForwardPath).To(Equal("unknown/api/tags"))
			Expect(res.Instance).To(Equal("default"))
		})

		It("should route a bare path to the default instance", func() {
			res := route.Resolve(reg, "/api/tags")
			Expect(res.BaseURL).To(Equal("http://localhost:11434"))
			Expect(res.ForwardPath).To(Equal("api/tags"))
			Expect(res.Instance).To(Equal("default"))
		})

		It("should handle a single unknown segment", func() {
			res := route.Resolve(reg, "/version")
			Expect(res.ForwardPath).To(Equal("version"))
			Expect(res.Instance).To(Equal("default"))
		})
	})
})
