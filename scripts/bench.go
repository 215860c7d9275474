package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jaswdr/faker/v2"
	"github.com/labstack/echo/v4"
)

// n is the number of pokemons in the benchmark
const n = 10_000

// target is the URL of the pokedex server
const target = "http://localhost:7655"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error, %s", err)
		os.Exit(1)
	}
}

func run() error {
	generator := newGenerator()

	pokemons := preparePokemons(generator)
	ids, err := createPokemons(pokemons)
	defer func() {
		_ = deletePokemons(ids)
	}()
	if err != nil {
		return fmt.Errorf("cannot create pokemons: %s", err)
	}

	if err := getAllPokemons(); err != nil {
		return fmt.Errorf("cannot get all pokemons: %s", err)
	}

	if err := findPokemons(pokemons); err != nil {
		return fmt.Errorf("cannot find pokemons: %s", err)
	}

	return nil
}

func createPokemons(pokemons []map[string]any) ([]string, error) {
	defer trace("createPokemons")()
	var ids []string
	for _, pokemon := range pokemons {
		body, err := json.Marshal(pokemon)
		if err != nil {
			return ids, err
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := makeRequest("POST", "", body, &created); err != nil {
			return ids, err
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func getAllPokemons() error {
	defer trace("getAllPokemons")()
	return makeRequest("GET", "", nil, nil)
}

// findPokemons looks up each pokemon by its number, and then by its name,
// in upper case to exercise the normalization.
func findPokemons(pokemons []map[string]any) error {
	defer trace("findPokemons")()
	for _, pokemon := range pokemons {
		no := strconv.Itoa(pokemon["no"].(int))
		if err := makeRequest("GET", no, nil, nil); err != nil {
			return err
		}
		name := strings.ToUpper(pokemon["name"].(string))
		if err := makeRequest("GET", name, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func deletePokemons(ids []string) error {
	defer trace("deletePokemons")()
	for _, id := range ids {
		if err := makeRequest("DELETE", id, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func trace(msg string) func() {
	started := time.Now()
	return func() {
		fmt.Printf("%s took %s\n", msg, time.Since(started))
	}
}

func makeRequest(method, path string, reqjson []byte, out any) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	u.Path = "/pokemon"
	if path != "" {
		u.Path += "/" + path
	}
	req, err := http.NewRequest(
		method,
		u.String(),
		bytes.NewReader(reqjson),
	)
	if err != nil {
		return err
	}
	req.Header.Add(echo.HeaderAccept, echo.MIMEApplicationJSON)
	if len(reqjson) > 0 {
		req.Header.Add(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, u.Path, res.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	_, err = io.Copy(io.Discard, res.Body)
	return err
}

func newGenerator() faker.Faker {
	seed := time.Now().UnixNano()
	if s := os.Getenv("SEED"); s != "" {
		var err error
		seed, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid seed: %s", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seed = %d\n", seed)

	return faker.NewWithSeed(rand.NewSource(seed))
}

// preparePokemons generates pokemons with random names. The number is
// added to the name to keep it unique.
func preparePokemons(generator faker.Faker) []map[string]any {
	var pokemons []map[string]any
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("%s%s-%d", generator.Person().FirstName(), generator.Lorem().Word(), i)
		pokemons = append(pokemons, map[string]any{"no": i, "name": name})
	}
	return pokemons
}
