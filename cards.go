package main

import (
	"net/http"

	"riftscan/pkg/cardid"
	"riftscan/pkg/catalog"

	"github.com/gin-gonic/gin"
)

func listSetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, cardid.KnownSets)
}

func listLanguagesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": svc.Library.Languages(),
		"source":    svc.SourceLanguage,
		"target":    svc.TargetLanguage,
	})
}

func catalogDir(c *gin.Context) (*catalog.Dir, bool) {
	lang := c.Query("lang")
	if lang == "" {
		lang = svc.TargetLanguage
	}
	d, err := svc.Library.Language(lang)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return d, true
}

func listCardsHandler(c *gin.Context) {
	d, ok := catalogDir(c)
	if !ok {
		return
	}
	entries, err := d.Entries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	c.JSON(http.StatusOK, gin.H{"language": d.Language, "cards": ids})
}

// getCardHandler serves the card image file.
func getCardHandler(c *gin.Context) {
	d, ok := catalogDir(c)
	if !ok {
		return
	}
	e, err := d.Lookup(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.File(e.Path)
}
