package main

import (
	"context"
	"fmt"

	"github.com/apifit/apifit/example"
)

func main() {
	client := example.NewClient("https://httpbin.org/")
	defer client.Close()

	ctx := context.Background()

	var get example.GetResponse
	if err := client.Call(ctx, &get, "Get", 42); err != nil {
		panic(err)
	}
	fmt.Println(get.URL, get.Args["value"])

	var post example.AnythingResponse
	if err := client.Call(ctx, &post, "Post", "hello"); err != nil {
		panic(err)
	}
	fmt.Println(post.Method, post.JSON.Text)

	var auth example.AuthResponse
	if err := client.Call(ctx, &auth, "Login", "foo", "bar"); err != nil {
		panic(err)
	}
	fmt.Println(auth.Authenticated, auth.User)
}
