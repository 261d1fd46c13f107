package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8000/api"

var accessToken = os.Getenv("SIMULATION_TOKEN")

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	client := &http.Client{} // orchestration can take a while, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var out map[string]interface{}
	json.Unmarshal(body, &out)
	return out
}

func dataField(body []byte, key string) string {
	parsed := decode(body)
	data, _ := parsed["data"].(map[string]interface{})
	val, _ := data[key].(string)
	return val
}

func main() {
	color.Cyan("🚀 Starting Orchestration Pipeline Simulation\n")
	if accessToken == "" {
		color.Red("SIMULATION_TOKEN is not set (needs a valid JWT)")
		os.Exit(1)
	}

	// 1. Create a project
	color.Yellow("\n[1] Create Project")
	resp, body, err := sendRequest("POST", "/project/v1", map[string]interface{}{
		"name":        "Panadería Artesanal",
		"description": "Plan de expansión de una panadería local",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	projectID := dataField(body, "id")
	if projectID == "" {
		color.Red("No project id in response")
		os.Exit(1)
	}

	// 2. Feed the context builder until the document is ready
	contextMessages := []string{
		"Tengo una panadería artesanal en Valencia con 3 empleados.",
		"El problema es que las ventas bajan un 20% cada verano.",
		"Mi objetivo es abrir un segundo local el próximo año.",
		"Mi presupuesto máximo es de 50000 euros y no quiero pedir préstamos.",
	}
	for i, msg := range contextMessages {
		color.Yellow("\n[2.%d] Context Message", i+1)
		resp, body, err = sendRequest("POST", "/context/v1/"+projectID+"/message", map[string]interface{}{
			"content": msg,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		prettyPrint(decode(body))
	}

	// 3. Finalize the context session
	color.Yellow("\n[3] Finalize Context Session")
	resp, body, err = sendRequest("POST", "/context/v1/"+projectID+"/finalize", map[string]interface{}{
		"final_question": "¿Cómo puedo compensar la caída de ventas en verano?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. Run an orchestration query
	color.Yellow("\n[4] Orchestration Query")
	start := time.Now()
	resp, body, err = sendRequest("POST", "/orchestration/v1/query", map[string]interface{}{
		"project_id":       projectID,
		"user_prompt_text": "¿Cómo puedo compensar la caída de ventas en verano?",
	})
	elapsed := time.Since(start)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s (%v)", resp.Status, elapsed)
	prettyPrint(decode(body))

	// 5. Follow-up referencing the previous answer
	color.Yellow("\n[5] Follow-up Query")
	resp, body, err = sendRequest("POST", "/orchestration/v1/query", map[string]interface{}{
		"project_id":       projectID,
		"user_prompt_text": "¿Y si además vendo helados artesanales?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 6. History
	color.Yellow("\n[6] Interaction History")
	resp, body, err = sendRequest("GET", "/orchestration/v1/events/"+projectID+"?limit=10", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\n✅ Simulation finished")
}
