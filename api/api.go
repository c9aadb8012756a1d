/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/typesense/typesense-go/typesense/api"

	"github.com/leadgrid/leadgrid/config"

	"github.com/leadgrid/leadgrid/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/leadgrid/leadgrid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Api struct {
	leadgrid *leadgrid.Leadgrid
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/leads", a.SubmitLead)
	router.GET("/leads/:id", a.GetLead)
	router.GET("/leads", a.GetSeekerLeads)
	router.GET("/leads/:id/responses", a.GetLeadResponses)

	router.GET("/responses/:id", a.GetResponse)
	router.GET("/responses", a.GetProviderResponses)
	router.POST("/responses/:id/reject", a.RejectResponse)
	router.POST("/responses/:id/accept/order", a.CreatePaymentOrder)
	router.POST("/responses/:id/accept/verify", a.VerifyPayment)

	router.POST("/identities", a.CreateIdentity)
	router.GET("/identities/:id", a.GetIdentity)

	router.POST("/businesses", a.CreateBusiness)
	router.GET("/businesses/:id", a.GetBusiness)
	router.PUT("/businesses/:id/status", a.UpdateBusinessStatus)
	router.POST("/businesses/:id/keywords", a.RegisterKeyword)
	router.DELETE("/keywords/:id", a.RemoveKeyword)

	router.POST("/search/:collection", a.Search)
	router.POST("/multi-search", a.MultiSearch)

	router.POST("/reindex", a.StartReindex)
	router.GET("/reindex/progress", a.GetReindexProgress)
	return a.router
}

func NewAPI(l *leadgrid.Leadgrid) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware("leadgrid"))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware(conf))
	}
	r.Use(middleware.NewAuthMiddleware(l).Authenticate())

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{leadgrid: l, router: r}
}

func (a Api) Search(c *gin.Context) {
	collection, passed := c.Params.Get("collection")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collection is required. pass id in the route /:collection"})
		return
	}

	var query api.SearchCollectionParams
	err := c.BindJSON(&query)
	if err != nil {
		return
	}

	resp, err := a.leadgrid.Search(collection, &query)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) MultiSearch(c *gin.Context) {
	var query api.MultiSearchSearchesParameter
	err := c.BindJSON(&query)
	if err != nil {
		return
	}

	resp, err := a.leadgrid.MultiSearch(&query)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
