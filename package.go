// Craft is a front-end client for a ComfyUI image generation backend.
// It uploads a reference image, submits a prompt as a node graph, follows
// generation progress over a persistent websocket, and resolves the URL
// of the finished image.
package craft
