package web

import (
	"testing"

	"github.com/cozy-labs/cozy-pokedex/memstore"
)

func TestPokemon(t *testing.T) {
	t.Parallel()

	t.Run("Test the POST /pokemon endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())

		// Check errors
		e.POST("/pokemon").WithBytes([]byte(`not_json`)).
			Expect().Status(400).
			JSON().Object().HasValue("error", "bad_request")
		e.POST("/pokemon").WithJSON(map[string]any{"name": "bulbasaur"}).
			Expect().Status(400).
			JSON().Object().HasValue("error", "bad_request")
		e.POST("/pokemon").WithJSON(map[string]any{"no": 0, "name": "bulbasaur"}).
			Expect().Status(400)
		e.POST("/pokemon").WithJSON(map[string]any{"no": 1.5, "name": "bulbasaur"}).
			Expect().Status(400)
		e.POST("/pokemon").WithJSON(map[string]any{"no": 1, "name": "  "}).
			Expect().Status(400)

		obj := e.POST("/pokemon").WithJSON(map[string]any{"no": 1, "name": "Bulbasaur"}).
			Expect().Status(201).
			JSON().Object()
		obj.Value("id").String().NotEmpty()
		obj.HasValue("no", 1)
		obj.HasValue("name", "bulbasaur")

		// Duplicates
		obj = e.POST("/pokemon").WithJSON(map[string]any{"no": 1, "name": "Ivysaur"}).
			Expect().Status(400).
			JSON().Object()
		obj.HasValue("error", "duplicate_entity")
		obj.Value("reason").String().Contains(`{"no":1}`)
		e.POST("/pokemon").WithJSON(map[string]any{"no": 2, "name": "BULBASAUR"}).
			Expect().Status(400).
			JSON().Object().HasValue("error", "duplicate_entity")
	})

	t.Run("Test the GET /pokemon endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		e.GET("/pokemon").Expect().Status(200).
			JSON().Array().IsEmpty()

		for i, name := range []string{"Charmander", "Charmeleon", "Charizard"} {
			e.POST("/pokemon").WithJSON(map[string]any{"no": i + 4, "name": name}).
				Expect().Status(201)
		}
		arr := e.GET("/pokemon").Expect().Status(200).
			JSON().Array()
		arr.Length().IsEqual(3)
		for i, name := range []string{"charmander", "charmeleon", "charizard"} {
			arr.Value(i).Object().HasValue("name", name).HasValue("no", i+4)
		}
	})

	t.Run("Test the GET /pokemon/:term endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		id := e.POST("/pokemon").WithJSON(map[string]any{"no": 25, "name": "Pikachu"}).
			Expect().Status(201).
			JSON().Object().Value("id").String().Raw()

		for _, term := range []string{"25", id, "pikachu", "PIKACHU"} {
			obj := e.GET("/pokemon/{term}").WithPath("term", term).
				Expect().Status(200).
				JSON().Object()
			obj.HasValue("id", id)
			obj.HasValue("no", 25)
			obj.HasValue("name", "pikachu")
		}

		obj := e.GET("/pokemon/missingno").Expect().Status(404).
			JSON().Object()
		obj.HasValue("error", "not_found")
		obj.Value("reason").String().Contains("'missingno'")
	})

	t.Run("Test the PATCH /pokemon/:term endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		id := e.POST("/pokemon").WithJSON(map[string]any{"no": 1, "name": "Bulbasaur"}).
			Expect().Status(201).
			JSON().Object().Value("id").String().Raw()
		e.POST("/pokemon").WithJSON(map[string]any{"no": 3, "name": "Venusaur"}).
			Expect().Status(201)

		// Check errors
		e.PATCH("/pokemon/1").WithBytes([]byte(`not_json`)).
			Expect().Status(400)
		e.PATCH("/pokemon/1").WithJSON(map[string]any{"name": ""}).
			Expect().Status(400)
		e.PATCH("/pokemon/1").WithJSON(map[string]any{"no": -1}).
			Expect().Status(400)
		e.PATCH("/pokemon/999").WithJSON(map[string]any{"name": "mew"}).
			Expect().Status(404)
		e.PATCH("/pokemon/1").WithJSON(map[string]any{"no": 3}).
			Expect().Status(400).
			JSON().Object().HasValue("error", "duplicate_entity")

		obj := e.PATCH("/pokemon/1").WithJSON(map[string]any{"name": "Ivysaur"}).
			Expect().Status(200).
			JSON().Object()
		obj.HasValue("id", id)
		obj.HasValue("no", 1)
		obj.HasValue("name", "ivysaur")

		obj = e.PATCH("/pokemon/ivysaur").WithJSON(map[string]any{"no": 2}).
			Expect().Status(200).
			JSON().Object()
		obj.HasValue("id", id)
		obj.HasValue("no", 2)
		obj.HasValue("name", "ivysaur")

		e.GET("/pokemon/2").Expect().Status(200).
			JSON().Object().HasValue("id", id)
	})

	t.Run("Test the DELETE /pokemon/:id endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		id := e.POST("/pokemon").WithJSON(map[string]any{"no": 133, "name": "Eevee"}).
			Expect().Status(201).
			JSON().Object().Value("id").String().Raw()

		// Only the identifier is accepted
		e.DELETE("/pokemon/133").Expect().Status(400).
			JSON().Object().HasValue("error", "invalid_request")
		e.DELETE("/pokemon/eevee").Expect().Status(400)

		e.DELETE("/pokemon/{id}").WithPath("id", id).
			Expect().Status(204).
			NoContent()
		e.DELETE("/pokemon/{id}").WithPath("id", id).
			Expect().Status(400)
		e.GET("/pokemon/133").Expect().Status(404)
		e.GET("/pokemon").Expect().Status(200).
			JSON().Array().IsEmpty()
	})
}
