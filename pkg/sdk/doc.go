// Package mealmentor embeds the MealMentor recipe question answering pipeline
// in a Go program: a recipe dataset is indexed in memory (or in Redis), the
// top matches are rendered into a prompt, an LLM answers, and a second LLM
// call judges how relevant the answer is.
//
//	client, _ := mealmentor.New(ctx,
//	    mealmentor.WithDataset("data/data.csv"),
//	    mealmentor.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	ans, _ := client.Ask(ctx, "What is a high protein keto dinner?")
//	fmt.Println(ans.Text, ans.Relevance, ans.CostUSD)
//	_ = client.Feedback(ctx, ans.ConversationID, 1)
package mealmentor
