package cache

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
)

// GalleryName is the file GenerateGallery writes under the cache root.
const GalleryName = "gallery.html"

// GenerateGallery writes a static, offline HTML page listing every story
// with its cover, newest first. Returns the page path.
func (m *Manager) GenerateGallery(stories []catalog.Story, categories []string) (string, error) {
	if err := os.MkdirAll(m.baseDir, 0750); err != nil {
		return "", err
	}
	path := filepath.Join(m.baseDir, GalleryName)
	if err := os.WriteFile(path, []byte(generateGallery(stories, categories)), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", GalleryName, err)
	}
	return path, nil
}

func generateGallery(stories []catalog.Story, categories []string) string {
	var s strings.Builder

	sorted := make([]catalog.Story, len(stories))
	copy(sorted, stories)
	catalog.SortNewestFirst(sorted)

	s.WriteString(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>storyshelf</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f9fafb; color: #111827; margin: 0; }
        header { position: sticky; top: 0; background: #fff; padding: 16px 24px; box-shadow: 0 1px 4px rgba(0,0,0,.08); }
        h1 { margin: 0 0 4px; font-size: 1.6rem; color: #0369a1; }
        .subtitle { color: #6b7280; font-size: .9rem; }
        .controls { display: flex; gap: 8px; flex-wrap: wrap; margin-top: 12px; }
        #search { flex: 1; min-width: 200px; padding: 8px 12px; border: 1px solid #d1d5db; border-radius: 8px; }
        .cat { padding: 6px 12px; border: 1px solid #d1d5db; border-radius: 999px; background: #fff; cursor: pointer; }
        .cat.active { background: #0ea5e9; color: #fff; border-color: #0ea5e9; }
        main { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 20px; padding: 24px; }
        .card { background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
        .card img, .card .nocover { width: 100%; aspect-ratio: 2 / 3; object-fit: cover; background: #e5e7eb; display: block; }
        .card .body { padding: 10px 12px; }
        .card h2 { font-size: 1rem; margin: 0 0 4px; }
        .meta { color: #6b7280; font-size: .8rem; }
        .hidden { display: none; }
    </style>
</head>
<body>
<header>
    <h1>مكتبتي</h1>
`)
	fmt.Fprintf(&s, "    <div class=\"subtitle\">%d قصة</div>\n", len(sorted))
	s.WriteString("    <div class=\"controls\">\n")
	s.WriteString("        <input id=\"search\" type=\"search\" placeholder=\"ابحث عن عنوان أو كاتب\">\n")
	s.WriteString("        <button class=\"cat active\" data-cat=\"\">الكل</button>\n")
	for _, c := range categories {
		fmt.Fprintf(&s, "        <button class=\"cat\" data-cat=\"%s\">%s</button>\n", html.EscapeString(c), html.EscapeString(c))
	}
	s.WriteString("    </div>\n</header>\n<main>\n")

	for _, st := range sorted {
		renderStoryCard(&s, st, categories)
	}

	s.WriteString(`</main>
<script>
    let activeCat = '';
    const search = document.getElementById('search');
    function apply() {
        const q = search.value.trim().toLowerCase();
        document.querySelectorAll('.card').forEach(card => {
            const okText = !q || card.dataset.text.includes(q);
            const okCat = !activeCat || card.dataset.cat === activeCat;
            card.classList.toggle('hidden', !(okText && okCat));
        });
    }
    search.addEventListener('input', apply);
    document.querySelectorAll('.cat').forEach(btn => btn.addEventListener('click', () => {
        document.querySelectorAll('.cat').forEach(b => b.classList.remove('active'));
        btn.classList.add('active');
        activeCat = btn.dataset.cat;
        apply();
    }));
</script>
</body>
</html>
`)
	return s.String()
}

func renderStoryCard(s *strings.Builder, st catalog.Story, categories []string) {
	label := catalog.CategoryLabel(st.Category, categories)
	text := strings.ToLower(st.Title + " " + st.Author + " " + st.Description)

	fmt.Fprintf(s, "<article class=\"card\" data-cat=\"%s\" data-text=\"%s\">\n",
		html.EscapeString(label), html.EscapeString(text))
	if strings.HasPrefix(st.CoverImage, "data:image/") {
		fmt.Fprintf(s, "    <img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n",
			html.EscapeString(st.CoverImage), html.EscapeString(st.Title))
	} else {
		s.WriteString("    <div class=\"nocover\"></div>\n")
	}
	s.WriteString("    <div class=\"body\">\n")
	fmt.Fprintf(s, "        <h2>%s</h2>\n", html.EscapeString(st.Title))
	fmt.Fprintf(s, "        <div class=\"meta\">%s · %s</div>\n", html.EscapeString(st.Author), html.EscapeString(label))
	fmt.Fprintf(s, "        <div class=\"meta\">👁 %d · 👍 %d · ⬇ %d</div>\n", st.Views, st.Likes, st.Downloads)
	s.WriteString("    </div>\n</article>\n")
}
