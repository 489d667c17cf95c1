// Package rag provides the vector indexes behind capability.VectorIndex and
// the ingestion path that fills them.
//
// # Indexes
//
//   - MemoryIndex: in-process cosine similarity over embeddings.Embedder vectors
//   - QdrantIndex: a Qdrant collection via langchaingo's vectorstores/qdrant
//
// # Ingestion
//
// Ingestor loads PDF (documentloaders.NewPDF), plain text and Markdown files,
// splits them with a recursive character splitter (1000 characters, 200
// overlap) and indexes the chunks. Replace clears the index first, which is
// what an upload does.
//
//	embedder, _ := llm.NewEmbedder(ctx, cfg)
//	index := rag.NewMemoryIndex(embedder)
//	res, err := rag.NewIngestor(index).IngestFile(ctx, "paper.pdf")
package rag
